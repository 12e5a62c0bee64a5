// Package ttlcache provides a single-slot cache with a fixed time-to-live.
//
// A [Cache] remembers one value and when it expires. Expiry is checked
// lazily on [Cache.Get]; there is no background sweep. [Cache.Invalidate]
// empties the slot regardless of remaining lifetime.
//
// Fetches that run outside the owner's lock use [Cache.Generation] and
// [Cache.SetIfGeneration] so that a value fetched before an invalidation is
// never written back over it:
//
//	gen := c.Generation()
//	unlock()
//	v, err := fetch()
//	lock()
//	if err == nil {
//	    c.SetIfGeneration(gen, v)
//	}
package ttlcache
