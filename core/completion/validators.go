package completion

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/hudumahq/huduma/core"
)

var (
	// justification policy; override via SetJustificationMinLen at startup
	justificationMinLen = 30

	jstMinLenTag = "jstminlen"

	evidenceTag  = "evidencerequired"
	evidenceText = "one of evidence_url or evidence_label is required"

	evidenceURLTag  = "evidenceurl"
	evidenceURLText = "evidence_url must be a well-formed absolute URL"
)

func init() {
	core.Validate.RegisterStructValidation(requestStructValidation, NewRequest{})
	core.RegisterCustomTranslation(jstMinLenTag, jstMinLenText())
	core.RegisterCustomTranslation(evidenceTag, evidenceText)
	core.RegisterCustomTranslation(evidenceURLTag, evidenceURLText)
}

func jstMinLenText() string {
	return fmt.Sprintf("justification must contain at least %d characters", justificationMinLen)
}

// SetJustificationMinLen overrides the minimum justification length from config.
func SetJustificationMinLen(n int) {
	if n > 0 {
		justificationMinLen = n
		core.RegisterCustomTranslation(jstMinLenTag, jstMinLenText(), true)
	}
}

// JustificationMinLen returns the currently enforced minimum length.
func JustificationMinLen() int { return justificationMinLen }

// requestStructValidation does struct level validation on NewRequest:
// - justification minimum length
// - at least one evidence field
// - evidence URL must be absolute
func requestStructValidation(sl validator.StructLevel) {
	nr, ok := sl.Current().Interface().(NewRequest)
	if !ok {
		return
	}

	if nr.Justification != "" && len(nr.Justification) < justificationMinLen {
		sl.ReportError(nr.Justification, "justification", "Justification", jstMinLenTag, "")
	}

	if nr.EvidenceURL == "" && nr.EvidenceLabel == "" {
		sl.ReportError(nr.EvidenceURL, "evidence_url", "EvidenceURL", evidenceTag, "")
		sl.ReportError(nr.EvidenceLabel, "evidence_label", "EvidenceLabel", evidenceTag, "")
		return
	}

	if nr.EvidenceURL != "" {
		if u, err := url.Parse(nr.EvidenceURL); err != nil || !u.IsAbs() || u.Host == "" {
			sl.ReportError(nr.EvidenceURL, "evidence_url", "EvidenceURL", evidenceURLTag, "")
		}
	}
}
