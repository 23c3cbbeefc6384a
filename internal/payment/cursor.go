package payment

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EncodeCursor packs a page boundary into an opaque token:
// "<epochMillis>:<id>" encoded as unpadded base64url. Returns nil when either
// coordinate is nil (no next page). Only two fields are packed positionally;
// adding cursor fields later needs a versioned scheme so old tokens are not
// silently misread.
func EncodeCursor(createdAt *time.Time, id *int64) *string {
	if createdAt == nil || id == nil {
		return nil
	}

	raw := fmt.Sprintf("%d:%d", createdAt.UnixMilli(), *id)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(raw))
	return &encoded
}

// DecodeCursor unpacks a cursor token back into its (creation time, id)
// coordinates at millisecond precision, UTC.
//
// Any malformed input — bad base64, missing colon, non-numeric parts — fails
// open to (nil, nil): a corrupt or tampered cursor silently restarts
// pagination from the first page instead of erroring. This also means a
// malicious cursor is ignored rather than rejected; see DESIGN.md.
func DecodeCursor(cursor *string) (*time.Time, *int64) {
	if cursor == nil || strings.TrimSpace(*cursor) == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(*cursor))
	if err != nil {
		return nil, nil
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, nil
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, nil
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, nil
	}

	createdAt := time.UnixMilli(millis).UTC()
	return &createdAt, &id
}
