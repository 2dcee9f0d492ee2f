package domain

import (
	"errors"
	"fmt"
)

// MaxImageBytes caps the payload accepted for food identification.
const MaxImageBytes = 10 << 20

var ErrUnsupportedImageType = errors.New("unsupported image type")
var ErrImageTooLarge = errors.New("image exceeds size limit")

// OracleErrorKind classifies a nutrition-oracle failure.
type OracleErrorKind string

const (
	// OracleMalformedResponse means the model replied but the reply could
	// not be decoded into a verdict. All-or-nothing: no partial verdict is
	// ever surfaced.
	OracleMalformedResponse OracleErrorKind = "malformed_response"
	// OracleUnreachable means the upstream call itself failed.
	OracleUnreachable OracleErrorKind = "unreachable"
	// OracleCancelled means the caller abandoned the scan mid-call.
	OracleCancelled OracleErrorKind = "cancelled"
)

// OracleError is the only error type the oracle lets past its boundary.
type OracleError struct {
	Kind    OracleErrorKind
	Message string
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %s", e.Kind, e.Message)
}

// ConfidenceTier is the coarse certainty of a food identification. The
// underlying vision model exposes no calibrated probability, so callers only
// get a tier.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// IdentifiedFood is the result of running an image through the identifier.
type IdentifiedFood struct {
	Name       string         `json:"name"`
	Confidence ConfidenceTier `json:"confidence"`
}

// IdentifyError carries the upstream status of a failed identification.
// The identifier never substitutes a guess on failure.
type IdentifyError struct {
	Status  int
	Message string
}

func (e *IdentifyError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("identify failed (upstream %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("identify failed: %s", e.Message)
}
