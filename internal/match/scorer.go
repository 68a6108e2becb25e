// Package match scores how likely two candidate identity records describe the
// same physical person. It is pure computation: no I/O, no shared state, safe
// for concurrent use.
package match

import "strings"

// DefaultThreshold is the composite score at or above which two identities
// are treated as the same person. Tuned against the unclamped composite
// scale produced by Score with DefaultWeights; recalibrate if the weights
// change.
const DefaultThreshold = 83.0

// Identity is one candidate's comparable identity fields, plaintext.
// Constructed fresh per comparison and never mutated.
type Identity struct {
	NationalID      string
	GivenNames      string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
}

// FullName joins the name components in canonical order for comparison.
func (i Identity) FullName() string {
	return strings.Join([]string{i.GivenNames, i.PaternalSurname, i.MaternalSurname}, " ")
}

// Weights configures the contribution of each sub-score to the composite.
// Each weight is applied as weight/100; weights are NOT normalized against
// their sum, so the composite scale follows whatever the weights add up to.
type Weights struct {
	NationalID float64 `json:"national_id"`
	Name       float64 `json:"name"`
	Email      float64 `json:"email"`
	Phone      float64 `json:"phone"`
}

// DefaultWeights returns the production weighting. National ID carries zero
// weight (an exact ID hit is surfaced in the breakdown but the name signal
// dominates), and the weights intentionally sum to 117, not 100: a full match
// totals 117 on the scale DefaultThreshold was tuned against. Do not
// renormalize.
func DefaultWeights() Weights {
	return Weights{NationalID: 0, Name: 97, Email: 10, Phone: 10}
}

// Breakdown carries the per-field sub-scores and the weighted total.
// Sub-scores are percentages in [0, 100]; Total is the literal weighted sum
// and is not clamped, so it can exceed 100.
type Breakdown struct {
	NationalID float64 `json:"national_id"`
	Name       float64 `json:"name"`
	Email      float64 `json:"email"`
	Phone      float64 `json:"phone"`
	Total      float64 `json:"total"`
}

// Score computes the composite identity similarity between two records.
//
// Sub-scores:
//   - national ID: exact string equality only, 100 or 0
//   - name: NameSimilarity over the space-joined full names
//   - email: Similarity over the local part (text before the first '@')
//   - phone: Similarity after stripping one leading '9' from each number
//     independently (domestic mobile prefix convention)
//
// Every sub-computation is total over string inputs; empty fields degrade to
// empty-string comparisons rather than errors.
func Score(a, b Identity, w Weights) Breakdown {
	idScore := 0.0
	if a.NationalID == b.NationalID {
		idScore = 100
	}

	nameScore := NameSimilarity(a.FullName(), b.FullName())
	emailScore := Similarity(emailLocalPart(a.Email), emailLocalPart(b.Email))
	phoneScore := Similarity(trimMobilePrefix(a.Phone), trimMobilePrefix(b.Phone))

	total := idScore*(w.NationalID/100) +
		nameScore*(w.Name/100) +
		emailScore*(w.Email/100) +
		phoneScore*(w.Phone/100)

	return Breakdown{
		NationalID: idScore,
		Name:       nameScore,
		Email:      emailScore,
		Phone:      phoneScore,
		Total:      total,
	}
}

// emailLocalPart returns the text before the first '@', or the whole string
// when there is none.
func emailLocalPart(email string) string {
	if idx := strings.IndexByte(email, '@'); idx >= 0 {
		return email[:idx]
	}
	return email
}

// trimMobilePrefix strips a single leading '9' when present. Applied to each
// phone independently, so "987654321" vs "87654321" compares the same eight
// digits.
func trimMobilePrefix(phone string) string {
	if rest, ok := strings.CutPrefix(phone, "9"); ok {
		return rest
	}
	return phone
}
