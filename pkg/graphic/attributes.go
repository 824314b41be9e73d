package graphic

import (
	"fmt"
	"strings"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/style"
)

// attrKind classifies an attribute key.
type attrKind int

const (
	attrIgnored attrKind = iota
	attrUI               // retained, no behavior attached
	attrX
	attrY
	attrZ
	attrXY
	attrXYZ
	attrLabel
	attrHide
	attrClass
	attrColor
	attrSize
	attrEvent
	attrPoints
	attrStyleSheet
	attrSprite    // ui.sprite.<id>
	attrSpriteSub // ui.sprite.<id>.<sub>
)

const spritePrefix = "ui.sprite."

var attrTable = map[string]attrKind{
	"x":             attrX,
	"y":             attrY,
	"z":             attrZ,
	"xy":            attrXY,
	"xyz":           attrXYZ,
	"label":         attrLabel,
	"ui.label":      attrLabel,
	"ui.hide":       attrHide,
	"ui.class":      attrClass,
	"ui.color":      attrColor,
	"ui.size":       attrSize,
	"ui.clicked":    attrEvent,
	"ui.selected":   attrEvent,
	"ui.points":     attrPoints,
	"stylesheet":    attrStyleSheet,
	"ui.stylesheet": attrStyleSheet,
}

// classifier memoizes key classification so each distinct key is matched
// against the table and prefixes once.
type classifier struct {
	memo map[string]attrKind
}

func newClassifier() *classifier {
	return &classifier{memo: make(map[string]attrKind)}
}

func (c *classifier) classify(key string) attrKind {
	if k, ok := c.memo[key]; ok {
		return k
	}
	k, ok := attrTable[key]
	if !ok {
		switch {
		case strings.HasPrefix(key, spritePrefix) && len(key) > len(spritePrefix):
			if strings.Contains(key[len(spritePrefix):], ".") {
				k = attrSpriteSub
			} else {
				k = attrSprite
			}
		case strings.HasPrefix(key, "ui."):
			k = attrUI
		default:
			k = attrIgnored
		}
	}
	c.memo[key] = k
	return k
}

// splitSpriteKey splits "ui.sprite.<id>[.<sub>]" into id and sub.
func splitSpriteKey(key string) (id, sub string) {
	rest := strings.TrimPrefix(key, spritePrefix)
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}

// eventName maps ui.clicked to clicked and ui.selected to selected.
func eventName(key string) string { return strings.TrimPrefix(key, "ui.") }

// truthy interprets flag attributes. A nil value is set, matching attributes
// that carry no payload.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "false", "0", "no", "off":
			return false
		}
		return true
	}
	if n, ok := style.ToFloat(v); ok {
		return n != 0
	}
	return true
}

// parseClasses accepts "a b", "a, b" or a list of strings.
func parseClasses(v any) []string {
	var out []string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		out = strings.FieldsFunc(x, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	case []string:
		out = append(out, x...)
	case []any:
		for _, item := range x {
			out = append(out, parseClasses(item)...)
		}
	default:
		out = []string{fmt.Sprint(x)}
	}
	return out
}

// labelString renders a label attribute.
func labelString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// parseCoordinates reads one to three numbers for x, y, z, xy and xyz.
func parseCoordinates(v any, want int) ([]float64, error) {
	vals, err := style.ParseValues(v, style.GU)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAttribute, err, "position")
	}
	if vals.Len() < want {
		return nil, errors.New(errors.ErrCodeInvalidAttribute, "position needs %d components, got %d", want, vals.Len())
	}
	return vals.Numbers, nil
}

// parseSpritePosition accepts a number, one or three numbers, or four
// entries where one is a unit tag. Strings such as "1,2,0 px" are read the
// same way.
func parseSpritePosition(v any) (style.Values, error) {
	vals, err := style.ParseValues(v, style.GU)
	if err != nil {
		return style.Values{}, errors.Wrap(errors.ErrCodeInvalidSpritePosition, err, "sprite position %v", v)
	}
	switch vals.Len() {
	case 1:
		vals.Numbers = []float64{vals.Numbers[0], 0, 0}
	case 3:
	default:
		return style.Values{}, errors.New(errors.ErrCodeInvalidSpritePosition,
			"sprite position takes 1 or 3 components, got %d", vals.Len())
	}
	return vals, nil
}

// styleSheetURL extracts the path from "url(path)" or "url('path')".
func styleSheetURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "url(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	p := strings.TrimSpace(s[4 : len(s)-1])
	p = strings.Trim(p, `'"`)
	return p, p != ""
}
