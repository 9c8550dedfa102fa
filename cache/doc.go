// Package cache provides a disk-backed response cache bounded by total size
// and entry age.
//
// Entries are written one file per key under a dedicated directory, named by
// a stable hash of the key. Eviction for space removes the entries closest to
// their expiry first; a background sweep reclaims entries that expire without
// ever being displaced. No index file is persisted: the index is rebuilt from
// the directory contents at startup, with rediscovered entries given a fresh
// default lifetime.
//
//	c, err := cache.New(cache.DefaultConfig("/var/cache/profiles"))
//	defer c.Close()
//
//	c.StoreTTL("profile:42", body, 10*time.Minute)
//	if data, ok := c.Retrieve("profile:42"); ok {
//	    return data, nil
//	}
package cache
