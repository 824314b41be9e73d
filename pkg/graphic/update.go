package graphic

import (
	"path/filepath"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
)

func (g *Graph) setAttribute(target stream.Target, id, key string, value any) error {
	if target == stream.TargetGraph {
		return g.setGraphAttribute(key, value)
	}
	el, err := g.lookup(target, id)
	if err != nil {
		return err
	}
	return g.setElementAttribute(el, key, value)
}

func (g *Graph) removeAttribute(target stream.Target, id, key string) error {
	if target == stream.TargetGraph {
		return g.removeGraphAttribute(key)
	}
	el, err := g.lookup(target, id)
	if err != nil {
		return err
	}
	g.removeElementAttribute(el, key)
	return nil
}

func (g *Graph) lookup(target stream.Target, id string) (graphicElement, error) {
	switch target {
	case stream.TargetNode:
		if n, ok := g.nodes[id]; ok {
			return n, nil
		}
	case stream.TargetEdge:
		if e, ok := g.edges[id]; ok {
			return e, nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown attribute target %v", target)
	}
	return nil, errors.New(errors.ErrCodeElementNotFound, "%s %q", target, id)
}

// =============================================================================
// Element attributes
// =============================================================================

func (g *Graph) setElementAttribute(el graphicElement, key string, value any) error {
	kind := g.keys.classify(key)
	if kind == attrIgnored {
		return nil
	}
	b := el.base()

	switch kind {
	case attrX, attrY, attrZ, attrXY, attrXYZ:
		if n, ok := el.(*Node); ok {
			if err := g.setPosition(n, kind, value); err != nil {
				return err
			}
		}
		b.attrs[key] = value
	case attrLabel:
		b.attrs[key] = value
		b.label = labelString(value)
		if s := el.existingSkeleton(); s != nil {
			s.LabelChanged()
		}
	case attrHide:
		b.attrs[key] = value
		b.hidden = truthy(value)
		g.boundsChanged = true
	case attrClass:
		b.attrs[key] = value
		b.classes = parseClasses(value)
		g.styles.Regroup(el)
		g.styleChanged(el)
	case attrColor:
		b.attrs[key] = value
		if s := el.existingSkeleton(); s != nil {
			s.ColorChanged(value)
		}
		g.updateDynamic(el)
	case attrSize:
		b.attrs[key] = value
		if s := el.existingSkeleton(); s != nil {
			s.SizeChanged(value)
		}
		g.updateDynamic(el)
		g.styleChanged(el)
	case attrEvent:
		on := truthy(value)
		grp := g.styles.GroupOf(el)
		if on {
			b.attrs[key] = value
			grp.PushEvent(el, eventName(key))
		} else {
			delete(b.attrs, key)
			grp.PopEvent(el, eventName(key))
		}
		g.styleChanged(el)
	case attrPoints:
		b.attrs[key] = value
		if e, ok := el.(*Edge); ok && e.skel != nil {
			e.skel.PointsChanged(value)
		}
	default:
		b.attrs[key] = value
	}
	g.graphChanged = true
	return nil
}

func (g *Graph) removeElementAttribute(el graphicElement, key string) {
	kind := g.keys.classify(key)
	if kind == attrIgnored {
		return
	}
	b := el.base()
	delete(b.attrs, key)

	switch kind {
	case attrLabel:
		b.label = ""
		if s := el.existingSkeleton(); s != nil {
			s.LabelChanged()
		}
	case attrHide:
		b.hidden = false
		g.boundsChanged = true
	case attrClass:
		b.classes = nil
		g.styles.Regroup(el)
		g.styleChanged(el)
	case attrColor:
		if s := el.existingSkeleton(); s != nil {
			s.ColorChanged(nil)
		}
		g.updateDynamic(el)
	case attrSize:
		if s := el.existingSkeleton(); s != nil {
			s.SizeChanged(nil)
		}
		g.updateDynamic(el)
		g.styleChanged(el)
	case attrEvent:
		g.styles.GroupOf(el).PopEvent(el, eventName(key))
		g.styleChanged(el)
	case attrPoints:
		if e, ok := el.(*Edge); ok && e.skel != nil {
			e.skel.PointsChanged(nil)
		}
	}
	g.graphChanged = true
}

func (g *Graph) setPosition(n *Node, kind attrKind, value any) error {
	want := map[attrKind]int{attrX: 1, attrY: 1, attrZ: 1, attrXY: 2, attrXYZ: 2}[kind]
	nums, err := parseCoordinates(value, want)
	if err != nil {
		return err
	}
	c := n.center
	switch kind {
	case attrX:
		c.X = nums[0]
	case attrY:
		c.Y = nums[0]
	case attrZ:
		c.Z = nums[0]
	case attrXY:
		c.X, c.Y = nums[0], nums[1]
	case attrXYZ:
		c.X, c.Y = nums[0], nums[1]
		if len(nums) > 2 {
			c.Z = nums[2]
		}
	}
	n.center = c
	n.positioned = true
	g.nodeMoved(n)
	return nil
}

// updateDynamic moves el between the bulk and dynamic partitions depending
// on whether it carries a per-element color or size.
func (g *Graph) updateDynamic(el graphicElement) {
	_, color := el.base().attrs["ui.color"]
	_, size := el.base().attrs["ui.size"]
	grp := g.styles.GroupOf(el)
	if color || size {
		grp.MarkDynamic(el)
	} else {
		grp.UnmarkDynamic(el)
	}
}

// styleChanged invalidates skeletons whose geometry depends on el's style.
// Edges bend around node sizes, so a node change reaches its edges.
func (g *Graph) styleChanged(el graphicElement) {
	if s := el.existingSkeleton(); s != nil {
		s.StyleChanged()
	}
	if n, ok := el.(*Node); ok {
		for _, e := range g.incident[n.id] {
			g.edgeMoved(e)
		}
	}
}

// =============================================================================
// Graph attributes
// =============================================================================

func (g *Graph) setGraphAttribute(key string, value any) error {
	switch g.keys.classify(key) {
	case attrIgnored:
		return nil
	case attrStyleSheet:
		sheet, err := g.loadStyleSheet(value)
		if err != nil {
			return err
		}
		g.attrs[key] = value
		g.SetStyleSheet(sheet)
	case attrSprite:
		id, _ := splitSpriteKey(key)
		return g.placeSprite(id, value)
	case attrSpriteSub:
		id, sub := splitSpriteKey(key)
		s, err := g.spriteFor(id)
		if err != nil {
			return err
		}
		if sub == "ui.attach" {
			return g.attachSprite(s, value)
		}
		return g.setElementAttribute(s, sub, value)
	case attrClass:
		g.attrs[key] = value
		g.classes = parseClasses(value)
	default:
		g.attrs[key] = value
	}
	g.graphChanged = true
	return nil
}

func (g *Graph) removeGraphAttribute(key string) error {
	switch g.keys.classify(key) {
	case attrIgnored:
		return nil
	case attrStyleSheet:
		delete(g.attrs, key)
		g.SetStyleSheet(g.sheet)
	case attrSprite:
		id, _ := splitSpriteKey(key)
		return g.removeSprite(id)
	case attrSpriteSub:
		id, sub := splitSpriteKey(key)
		s, ok := g.sprites[id]
		if !ok {
			return errors.New(errors.ErrCodeElementNotFound, "sprite %q", id)
		}
		if sub == "ui.attach" {
			g.detachSprite(s)
			return nil
		}
		g.removeElementAttribute(s, sub)
	case attrClass:
		delete(g.attrs, key)
		g.classes = nil
	default:
		delete(g.attrs, key)
	}
	g.graphChanged = true
	return nil
}

// loadStyleSheet accepts a parsed sheet, "url(path)" or document text.
func (g *Graph) loadStyleSheet(value any) (*style.StyleSheet, error) {
	var (
		sheet *style.StyleSheet
		err   error
	)
	switch v := value.(type) {
	case *style.StyleSheet:
		return v, nil
	case string:
		if path, ok := styleSheetURL(v); ok {
			if !filepath.IsAbs(path) && g.baseDir != "" {
				path = filepath.Join(g.baseDir, path)
			}
			sheet, err = style.LoadFile(path)
		} else {
			sheet, err = style.ParseAny([]byte(v))
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidStyleSheet, "stylesheet must be a string, got %T", value)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range sheet.Warnings {
		g.log.Warn("stylesheet", "warning", w)
	}
	return sheet, nil
}

// SetStyleSheet replaces the style sheet, regrouping every element. It is
// applied locally and not emitted.
func (g *Graph) SetStyleSheet(sheet *style.StyleSheet) {
	g.styles.SetStyleSheet(sheet)
	for _, n := range g.nodes {
		if n.skel != nil {
			n.skel.StyleChanged()
		}
	}
	for _, e := range g.edges {
		if e.skel != nil {
			e.skel.StyleChanged()
		}
	}
	for _, s := range g.sprites {
		if s.skel != nil {
			s.skel.StyleChanged()
			s.skel.PositionChanged()
		}
	}
	g.graphChanged = true
}
