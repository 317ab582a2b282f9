package remote

import (
	"net/url"
	"strings"

	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// Address combines an S3-compatible endpoint, signing region, and bucket,
// grounded on the plain-data Address in
// _examples/original_source/rust/dialog-s3-credentials/src/address.rs. URL
// validation is deferred to BuildURL, matching the original's "this is a
// plain data type" design note.
type Address struct {
	Endpoint string
	Region   string
	Bucket   string
}

// NewAddress constructs an Address. It performs no validation; BuildURL
// reports malformed endpoints when a URL is actually needed.
func NewAddress(endpoint, region, bucket string) Address {
	return Address{Endpoint: endpoint, Region: region, Bucket: bucket}
}

// usesVirtualHostedStyle reports whether endpoint should address objects as
// "https://{bucket}.{host}/{key}" instead of "https://{host}/{bucket}/{key}".
// AWS S3 endpoints default to virtual-hosted style; every other
// S3-compatible service in spec.md's examples (R2, MinIO, Wasabi) is
// addressed path-style. The retrieved pack does not carry the original's
// is_path_style_default body, so this heuristic is this package's own,
// grounded on the real-world default AWS's own SDKs use.
func usesVirtualHostedStyle(endpoint string) bool {
	return strings.Contains(endpoint, "amazonaws.com")
}

// BuildURL builds the request URL for key against this address.
func (a Address) BuildURL(key string) (*url.URL, error) {
	u, err := url.Parse(a.Endpoint)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidValue, "Address.BuildURL", err)
	}
	if u.Host == "" {
		return nil, dialogerr.New(dialogerr.InvalidValue, "Address.BuildURL", "endpoint has no host")
	}
	trimmedKey := strings.TrimPrefix(key, "/")
	if usesVirtualHostedStyle(a.Endpoint) {
		u.Host = a.Bucket + "." + u.Host
		u.Path = "/" + trimmedKey
	} else {
		u.Path = "/" + a.Bucket + "/" + trimmedKey
	}
	return u, nil
}
