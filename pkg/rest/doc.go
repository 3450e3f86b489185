// Package rest holds the building blocks shared by the restpath client: path
// mapping, ordered query parameters, the error taxonomy, interceptors and
// response caches.
//
// # Path mapping
//
// A resource type says where it lives by implementing Pather for some key
// type. The key selects the mapping, so one resource can be addressed several
// ways by declaring named types over the same struct:
//
//	type Repo struct {
//	  Name string `json:"name"`
//	}
//
//	func (Repo) Path(key [2]string) (string, error) {
//	  return fmt.Sprintf("repos/%s/%s", key[0], key[1]), nil
//	}
//
//	type RepoByID Repo
//
//	func (RepoByID) Path(id int) (string, error) {
//	  return fmt.Sprintf("repositories/%d", id), nil
//	}
//
// Path is called on the zero value, so it must not read fields.
//
// # Query parameters
//
// Query keeps insertion order, which is also the order on the wire:
//
//	rest.NewQuery("a", "2", "b", "abcd").Encode() // "a=2&b=abcd"
//
// # Errors
//
// Every failure wraps one of the package sentinels. Non-2xx responses are
// *HTTPError values carrying the status and body; use StatusCode,
// IsUnauthorized, IsForbidden or IsNotFound to inspect them. Undecodable
// bodies are *DecodeError values that match ErrDeserialize.
//
// # Caching
//
// MemoryCache and NATSKVCache implement Cache and can be stacked with
// CacheChain. NewCacheFromConfig builds one from a CacheConfig.
package rest
