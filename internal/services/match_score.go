package services

import (
  "fmt"
  "regexp"
  "strings"

  "github.com/steuertel/collector/internal/types"
)

// MatchThreshold is the minimum rule-based score for an automatic match.
const MatchThreshold = 2

// aiConfirmedScore ranks an AI-confirmed score-1 candidate between a plain
// score-1 candidate and a rule-based score-2 candidate.
const aiConfirmedScore = 1.5

var emailDomainRe = regexp.MustCompile(`@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})$`)

// EmailDomain extracts the lowercased domain of an email address, or ""
// when the address is empty or malformed.
func EmailDomain(email string) string {
  m := emailDomainRe.FindStringSubmatch(strings.TrimSpace(email))
  if m == nil {
    return ""
  }
  return strings.ToLower(m[1])
}

var streetTokenRe = regexp.MustCompile(`\bstr\b`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeStreet canonicalizes a street address for comparison: lowercase,
// all spelling variants of "straße" ("str.", "str", "strasse", including
// suffixes like "Hauptstr.") folded to "straße", whitespace collapsed.
func NormalizeStreet(street string) string {
  s := strings.ToLower(strings.TrimSpace(street))
  if s == "" {
    return ""
  }
  s = strings.ReplaceAll(s, "strasse", "straße")
  s = strings.ReplaceAll(s, "str.", "straße")
  s = streetTokenRe.ReplaceAllString(s, "straße")
  s = whitespaceRe.ReplaceAllString(s, " ")
  return strings.TrimSpace(s)
}

// CalculateMatchScore scores one standalone practitioner (with its current
// placeholder firm) against one company candidate. Three independent
// signals, one point each:
//
//  1. the practitioner's last name appears in the candidate's name
//  2. placeholder and candidate share the same normalized street
//  3. practitioner (or placeholder) email domain equals the candidate's
//
// Pure function; deterministic for the same inputs.
func CalculateMatchScore(practitioner *types.Practitioner, placeholder *types.Firm, candidate *types.Firm) (int, []string) {
  score := 0
  var indicators []string

  if practitioner.LastName != "" && candidate.Name != "" {
    lastNameLower := strings.ToLower(practitioner.LastName)
    candidateNameLower := strings.ToLower(candidate.Name)
    if strings.Contains(candidateNameLower, lastNameLower) {
      score++
      indicators = append(indicators, fmt.Sprintf("name '%s' appears in firm name", practitioner.LastName))
    }
  }

  var placeholderStreet string
  if placeholder != nil {
    placeholderStreet = NormalizeStreet(placeholder.Street)
  }
  candidateStreet := NormalizeStreet(candidate.Street)
  if placeholderStreet != "" && candidateStreet != "" && placeholderStreet == candidateStreet {
    score++
    indicators = append(indicators, fmt.Sprintf("same street '%s'", candidate.Street))
  }

  var domain string
  if practitioner.Email != nil {
    domain = EmailDomain(*practitioner.Email)
  }
  if domain == "" && placeholder != nil {
    domain = EmailDomain(placeholder.Email)
  }
  candidateDomain := EmailDomain(candidate.Email)
  if domain != "" && candidateDomain != "" && domain == candidateDomain {
    score++
    indicators = append(indicators, fmt.Sprintf("same email domain '@%s'", candidateDomain))
  }

  return score, indicators
}
