package frame

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Toggle values. Each rule alternates between the pair based on the value read.
const (
	aclFull    = "1111"
	aclReduced = "0011"

	line2Primary   = "Apt. 10C"
	line2Secondary = "Apt. 22"

	ratingPrimary   = "ABA"
	ratingSecondary = "AAA"

	domainMindspring = "@mindspring.com"
	domainEarthlink  = "@earthlink.com"
)

// Exchange description refresh.
const (
	lastUpdatedMarker = "LAST UPDATED"

	// exchangeStampLayout is fixed width so a refresh replaces exactly the
	// previous stamp.
	exchangeStampLayout = "2006-01-02 15:04:05.000000"

	// ExchangeDescMaxLen is the width of exchange.ex_desc.
	ExchangeDescMaxLen = 150
)

var taxCodePattern = regexp.MustCompile(`^(US|CN)(\d)$`)

// taxCodeWrap is the highest digit per country prefix.
var taxCodeWrap = map[string]int{"US": 5, "CN": 4}

// Taxrate name tokens.
const (
	taxTokenUpper = " Tax "
	taxTokenLower = " tax "
)

func nextACL(current string) string {
	if current != aclFull {
		return aclFull
	}
	return aclReduced
}

func nextLine2(current string) string {
	if current != line2Primary {
		return line2Primary
	}
	return line2Secondary
}

func nextRating(current string) string {
	if current != ratingPrimary {
		return ratingPrimary
	}
	return ratingSecondary
}

// nextEmail swaps the mail domain while keeping the local part.
func nextEmail(current string) (string, error) {
	at := strings.LastIndexByte(current, '@')
	if at < 0 {
		return "", fmt.Errorf("email %q has no domain", current)
	}
	local := current[:at]
	if strings.HasSuffix(current, domainMindspring) {
		return local + domainEarthlink, nil
	}
	return local + domainMindspring, nil
}

// nextTaxCode advances a tax code to its circular successor within its
// country prefix: US1..US5 then US1, CN1..CN4 then CN1.
func nextTaxCode(current string) (string, error) {
	m := taxCodePattern.FindStringSubmatch(current)
	if m == nil {
		return "", fmt.Errorf("tax code %q does not match %s", current, taxCodePattern)
	}
	prefix, digit := m[1], int(m[2][0]-'0')
	wrap := taxCodeWrap[prefix]
	if digit < 1 || digit > wrap {
		return "", fmt.Errorf("tax code %q is outside %s1..%s%d", current, prefix, prefix, wrap)
	}
	if digit == wrap {
		return prefix + "1", nil
	}
	return fmt.Sprintf("%s%d", prefix, digit+1), nil
}

// flipTaxToken flips the case of the first " Tax " or " tax " token.
// The end of the name counts as a word boundary, so "City Tax" matches.
func flipTaxToken(name string) (string, error) {
	padded := name + " "

	var flipped string
	switch {
	case strings.Contains(padded, taxTokenUpper):
		flipped = strings.Replace(padded, taxTokenUpper, taxTokenLower, 1)
	case strings.Contains(padded, taxTokenLower):
		flipped = strings.Replace(padded, taxTokenLower, taxTokenUpper, 1)
	default:
		return "", fmt.Errorf("taxrate name %q contains neither %q nor %q", name, taxTokenUpper, taxTokenLower)
	}
	return flipped[:len(flipped)-1], nil
}

// refreshExchangeDesc appends a last-updated stamp to desc, or replaces the
// trailing stamp if one is already present. The result never exceeds
// ExchangeDescMaxLen.
func refreshExchangeDesc(desc string, now time.Time) string {
	stamp := now.Format(exchangeStampLayout)
	if strings.Contains(desc, lastUpdatedMarker) && len(desc) >= len(stamp) {
		return desc[:len(desc)-len(stamp)] + stamp
	}
	suffix := " " + lastUpdatedMarker + " " + stamp
	if len(desc)+len(suffix) > ExchangeDescMaxLen {
		cut := max(ExchangeDescMaxLen-len(suffix), 0)
		for cut > 0 && !utf8.RuneStart(desc[cut]) {
			cut--
		}
		desc = desc[:cut]
	}
	return desc + suffix
}

// watchOffset is the position of the watch item to replace: half the list,
// rounded up.
func watchOffset(count int64) int64 {
	return (count + 1) / 2
}
