package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// Text extractors are pure functions: no I/O, no clock, deterministic for a
// fixed input. Partial or ambiguous input never silently defaults; the
// caller re-prompts instead.

var (
	nonDigitRe   = regexp.MustCompile(`\D`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	// dimension forms: 1000*2000*25mm (origin ERP convention) or 1000x2000mm
	dimensionsRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)[x*](\d+(?:\.\d+)?)(?:[x*](\d+(?:\.\d+)?))?(?:mm|cm|m)?$`)
)

// Upper bounds for a pane, in millimetres.
const (
	maxPaneSide      = 10000
	maxPaneThickness = 100
)

// NormalizePhone strips separators from a phone number and folds the +84 /
// 84 country prefix into the leading-zero national form.
func NormalizePhone(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "+84") {
		cleaned = "0" + cleaned[3:]
	}
	digits := nonDigitRe.ReplaceAllString(cleaned, "")
	if strings.HasPrefix(digits, "84") && len(digits) == 11 {
		digits = "0" + digits[2:]
	}
	return digits
}

// ExtractPhone parses a customer phone number out of free text. Only digit
// sequences of 10 or 11 digits (after prefix normalisation and separator
// trimming) are accepted; any other shape rejects.
func ExtractPhone(text string) (string, bool) {
	phone := NormalizePhone(text)
	if len(phone) != 10 && len(phone) != 11 {
		return "", false
	}
	return phone, true
}

// ExtractOrderLine parses one "CODE TYPE DIMENSIONS QTY" utterance into a
// draft. The product type may span several words ("Kính cường lực"), so the
// line is read as: first token = code, last token = quantity, second-to-last
// = dimensions, everything between = type. Dimensions accept W*H*T with an
// optional unit suffix, or plain WxH when the pane thickness is implied by
// the product. Any missing, zero or negative field rejects the whole line.
func ExtractOrderLine(text string) (LineDraft, bool) {
	normalized := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if normalized == "" {
		return LineDraft{}, false
	}

	tokens := strings.Split(normalized, " ")
	if len(tokens) < 4 {
		return LineDraft{}, false
	}

	code := tokens[0]
	qtyStr := tokens[len(tokens)-1]
	dims := tokens[len(tokens)-2]
	prodType := strings.Join(tokens[1:len(tokens)-2], " ")

	if !isProductCode(code) {
		return LineDraft{}, false
	}

	width, height, thickness, ok := parseDimensions(dims)
	if !ok {
		return LineDraft{}, false
	}

	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		return LineDraft{}, false
	}

	return LineDraft{
		ProductCode: code,
		ProductType: prodType,
		Width:       width,
		Height:      height,
		Thickness:   thickness,
		Quantity:    qty,
	}, true
}

// ExtractOrderLines parses a multi-item utterance: entries separated by
// commas, semicolons or newlines. It returns the complete drafts plus the
// raw text of every entry that failed to parse, so the reply can echo the
// partial result.
func ExtractOrderLines(text string) ([]LineDraft, []string) {
	var drafts []LineDraft
	var rejected []string

	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\r' || r == '\n'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if d, ok := ExtractOrderLine(part); ok {
			drafts = append(drafts, d)
		} else {
			rejected = append(rejected, part)
		}
	}
	return drafts, rejected
}

// isProductCode requires at least two alphanumeric characters.
func isProductCode(code string) bool {
	if len(code) < 2 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

func parseDimensions(s string) (width, height, thickness float64, ok bool) {
	m := dimensionsRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}

	width, err := strconv.ParseFloat(m[1], 64)
	if err != nil || width <= 0 || width > maxPaneSide {
		return 0, 0, 0, false
	}
	height, err = strconv.ParseFloat(m[2], 64)
	if err != nil || height <= 0 || height > maxPaneSide {
		return 0, 0, 0, false
	}
	if m[3] != "" {
		thickness, err = strconv.ParseFloat(m[3], 64)
		if err != nil || thickness <= 0 || thickness > maxPaneThickness {
			return 0, 0, 0, false
		}
	}
	return width, height, thickness, true
}
