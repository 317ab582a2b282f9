package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/dialog-db/dialog-db-sub004/capability"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/metrics"
)

// DefaultPresignExpiry matches AuthorizedRequest's use in
// _examples/original_source/rust/dialog-s3-credentials/src/access.rs,
// where S3Request::expires defaults to 24 hours.
const DefaultPresignExpiry = 24 * time.Hour

// Client signs and dispatches capability.RequestDescriptors against an S3-
// compatible Address using direct SigV4 credentials, the "direct: SigV4
// presigned" branch of spec.md §4.9 step 3. The alternate "UCAN-mediated"
// branch (delegation chain + invocation against a remote access service) is
// exercised by composing a capability.Router in front of this Client: the
// router authorizes and maps an Authorized value to a RequestDescriptor,
// and this Client only ever signs the result.
type Client struct {
	address     Address
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	httpClient  *http.Client
	metrics     *metrics.Collector
}

// SetMetrics wires a Collector so Dispatch reports request counts and
// latency by method and outcome. Passing nil disables reporting.
func (c *Client) SetMetrics(m *metrics.Collector) {
	c.metrics = m
}

// NewClient constructs a Client for the given address with static SigV4
// credentials.
func NewClient(address Address, accessKeyID, secretAccessKey string) *Client {
	return &Client{
		address:     address,
		credentials: awscreds.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		signer:      v4.NewSigner(),
		httpClient:  http.DefaultClient,
	}
}

// Dispatch builds, signs, and issues the HTTP request for desc, returning a
// structured dialogerr on any non-2xx response.
func (c *Client) Dispatch(ctx context.Context, desc capability.RequestDescriptor, body io.Reader) (resp *http.Response, err error) {
	timer := metrics.NewTimer()
	defer func() {
		c.metrics.RecordRemoteRequest(desc.Method, dispatchOutcome(err), timer.Elapsed())
	}()

	key := BuildObjectKey(desc.Path)
	target, err := c.address.BuildURL(key)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, dialogerr.Wrap(dialogerr.IoError, "Client.Dispatch", err)
		}
	}
	sum := sha256.Sum256(payload)
	payloadHash := hex.EncodeToString(sum[:])

	query := target.Query()
	query.Set("X-Amz-Expires", formatSeconds(DefaultPresignExpiry))
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, desc.Method, target.String(), nil)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidState, "Client.Dispatch", err)
	}
	applyPrecondition(req, desc)
	if checksum, ok := desc.Params["checksum"].(string); ok && checksum != "" {
		req.Header.Set("x-amz-checksum-sha256", checksum)
	}

	creds, err := c.credentials.Retrieve(ctx)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.AuthorizationFailed, "Client.Dispatch", err)
	}
	// PresignHTTP produces a query-string-signed URL rather than a signed
	// header set, matching "presigned URL" in spec.md §4.9 step 3 literally
	// -- the result is a self-contained request a future caller (or a CLI
	// invoking curl) could replay, not just something this process can send.
	signedURI, signedHeaders, err := c.signer.PresignHTTP(ctx, creds, req, payloadHash, "s3", c.address.Region, time.Now())
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.AuthorizationFailed, "Client.Dispatch", err)
	}
	signedReq, err := http.NewRequestWithContext(ctx, desc.Method, signedURI, bodyReader(payload))
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidState, "Client.Dispatch", err)
	}
	signedReq.Header = signedHeaders
	for k, v := range req.Header {
		signedReq.Header[k] = v
	}
	if len(payload) > 0 {
		signedReq.ContentLength = int64(len(payload))
	}

	resp, err = c.httpClient.Do(signedReq)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.RemoteConnectionError, "Client.Dispatch", err)
	}
	return resp, classifyStatus(resp.StatusCode)
}

// dispatchOutcome labels a metrics observation "ok" on success or the
// dialogerr.Kind name on failure, so dashboards can break out error rates
// by kind without parsing error strings.
func dispatchOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var derr *dialogerr.Error
	if errors.As(err, &derr) {
		return derr.Kind.String()
	}
	return "error"
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}

func bodyReader(payload []byte) io.Reader {
	if len(payload) == 0 {
		return nil
	}
	return bytes.NewReader(payload)
}

func applyPrecondition(req *http.Request, desc capability.RequestDescriptor) {
	switch desc.Precondition {
	case capability.PreconditionIfMatch:
		req.Header.Set("If-Match", desc.IfMatch)
	case capability.PreconditionIfNoneMatch:
		req.Header.Set("If-None-Match", "*")
	}
}

// classifyStatus maps an HTTP status code to spec.md §4's error kinds: 2xx
// is success (nil), 404 is NotFound, 412 is CasConflict, any other 4xx/5xx
// is IoError.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return dialogerr.New(dialogerr.NotFound, "Client.Dispatch", "remote object does not exist")
	case status == http.StatusPreconditionFailed:
		return dialogerr.New(dialogerr.CasConflict, "Client.Dispatch", "precondition failed")
	default:
		return dialogerr.New(dialogerr.IoError, "Client.Dispatch", http.StatusText(status))
	}
}
