package invoicing

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CacheKeyNamespace prefixes every cache key of this domain so a single
// prefix delete wipes the whole namespace without enumerating keys.
const CacheKeyNamespace = "invoice_query:"

// keySeparator delimits the operation name and filter entries before hashing.
const keySeparator = "::"

// QueryCacheKey derives a deterministic cache key from an operation name and
// a normalized filter. The filter's sorted entries make the key independent
// of parameter insertion order; xxhash bounds the key length. Keys are not
// security-sensitive, so a fast non-cryptographic fingerprint is enough.
func QueryCacheKey(operation string, f InvoiceFilter) string {
	material := operation + keySeparator + strings.Join(f.Applied(), keySeparator)
	digest := xxhash.Sum64String(material)
	return CacheKeyNamespace + operation + ":" + strconv.FormatUint(digest, 16)
}

// RecordCacheKey derives the cache key for a single-record retrieval.
func RecordCacheKey(operation, id string) string {
	return CacheKeyNamespace + operation + ":" + id
}
