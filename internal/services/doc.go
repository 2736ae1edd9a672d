// Package services implements the [Catalog] interface against the public iTunes Search API.
//
// # Catalog Interface
//
// The sync engine only needs a storefront-scoped lookup by title and artist. [Catalog] is that abstraction, so tests and
// alternate storefronts can stand in for the real API.
//
// # iTunes Implementation
//
// [ITunesService] issues one anonymous GET per lookup:
//
//	GET https://itunes.apple.com/search?term=<title artist>&country=jp&entity=song&limit=1
//
// and returns the first result's trackName, collectionName and artistName verbatim. There is no ranking beyond the
// API's own order.
//
// # Error Handling
//
// Search uses typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrNoMatch] : resultCount is zero or results is empty
//
// A body that is not valid JSON yields a decode error. [ITunesService.Lookup] folds every error into "no match" and logs it
// at debug level.
package services
