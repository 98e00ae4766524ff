// Package books implements the catalog.
//
// # Listing Cache
//
// The full listing is served through Cache, a read-through cache keyed per
// caller as "{userId}-books-all":
//
//	list, err := bookCache.GetAllBooksForCaller(ctx, session.UserID)
//
// On a miss the repository is read once, the encoded list is stored with the
// configured TTL (24h by default) and the loaded list is returned. A cache
// backend failure degrades to a repository read. Listings expire by TTL only
// unless the service was built with invalidateOnWrite, in which case every
// create, update and delete drops all "*-books-all" keys.
//
// # Deleting
//
// A book that is lent out (Status false) cannot be deleted.
package books
