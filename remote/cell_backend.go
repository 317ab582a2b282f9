package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/dialog-db/dialog-db-sub004/capability"
	"github.com/dialog-db/dialog-db-sub004/cell"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
)

// CellBackend implements cell.Backend against a remote memory cell, per the
// memory cell remote address convention in spec.md §6:
// "<subject>/memory/<space>/<cell>". Every call re-derives and re-verifies
// an Authorized memory effect from the delegation chain in access, since
// the capability's edition-bearing parameters (the CAS precondition) and
// its expiry window both depend on the moment of the call.
type CellBackend struct {
	client  *Client
	subject capability.Subject
	space   string
	cell    string
	access  capability.Access
	invoker capability.Subject
}

// NewCellBackend returns a CellBackend addressing <subject>/memory/<space>/<cellName>
// through client, authorized by access on behalf of invoker.
func NewCellBackend(client *Client, subject capability.Subject, space, cellName string, access capability.Access, invoker capability.Subject) *CellBackend {
	return &CellBackend{client: client, subject: subject, space: space, cell: cellName, access: access, invoker: invoker}
}

func (b *CellBackend) capabilityFor(effect capability.Effect) capability.Capability {
	return capability.New(b.subject).
		Attenuate(capability.Memory{}).
		Constrain(capability.Space{Name: b.space}).
		Constrain(capability.Cell{Name: b.cell}).
		Invoke(effect)
}

func (b *CellBackend) authorize(effect capability.Effect) (capability.Authorized, error) {
	return capability.Authorize(b.capabilityFor(effect), b.access, b.invoker, time.Now())
}

// Read resolves the cell's current content and edition, per memory.Resolve
// in _examples/original_source/rust/dialog-s3-credentials/src/capability/memory.rs.
func (b *CellBackend) Read(ctx context.Context) ([]byte, cell.Edition, error) {
	authorized, err := b.authorize(capability.MemoryResolve{})
	if err != nil {
		return nil, "", err
	}
	desc, err := (capability.MemoryProvider{}).Execute(ctx, authorized)
	if err != nil {
		return nil, "", err
	}
	resp, err := b.client.Dispatch(ctx, desc, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", dialogerr.Wrap(dialogerr.IoError, "CellBackend.Read", err)
	}
	return data, cell.Edition(resp.Header.Get("ETag")), nil
}

// Write publishes data to the cell, conditioned on expected: an empty
// expected means "the cell must not already exist" (If-None-Match), a
// non-empty one means "the cell's edition must equal expected" (If-Match),
// per memory.Publish.
func (b *CellBackend) Write(ctx context.Context, data []byte, expected cell.Edition) (cell.Edition, error) {
	var when *string
	if expected != "" {
		w := string(expected)
		when = &w
	}
	authorized, err := b.authorize(capability.MemoryPublish{Checksum: sha256Hex(data), When: when})
	if err != nil {
		return "", err
	}
	desc, err := (capability.MemoryProvider{}).Execute(ctx, authorized)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Dispatch(ctx, desc, bytes.NewReader(data))
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return "", err
	}
	defer resp.Body.Close()
	return cell.Edition(resp.Header.Get("ETag")), nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
