package raidplan

import "maps"

// PropertyKind is the value type a PropertySpec accepts.
type PropertyKind uint8

const (
	KindNumber PropertyKind = iota // float64
	KindBool                       // bool
	KindString                     // string
	KindColor                      // Color
	KindVec2                       // Vec2
)

// PropertySpec declares one effect property: its key, the kind of value it
// holds, the default used when the bag has no (or a mistyped) value, and
// whether it may be keyframed per step.
type PropertySpec struct {
	Key     string
	Kind    PropertyKind
	Default any
	Keyable bool
}

// PropertyBag is the raw, persisted property data of an effect instance.
// Values are validated against a []PropertySpec when resolved.
type PropertyBag map[string]Keyable[any]

func (b PropertyBag) clone() PropertyBag {
	if b == nil {
		return nil
	}
	return maps.Clone(b)
}

// ResolvedProperties is a flat bag of concrete values for one step.
type ResolvedProperties map[string]any

// Number returns the float64 stored under key, or 0.
func (p ResolvedProperties) Number(key string) float64 {
	v, _ := p[key].(float64)
	return v
}

// Bool returns the bool stored under key, or false.
func (p ResolvedProperties) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// String returns the string stored under key, or "".
func (p ResolvedProperties) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Color returns the Color stored under key, or the zero color.
func (p ResolvedProperties) Color(key string) Color {
	v, _ := p[key].(Color)
	return v
}

// Vec2 returns the Vec2 stored under key, or the zero vector.
func (p ResolvedProperties) Vec2(key string) Vec2 {
	v, _ := p[key].(Vec2)
	return v
}

// ResolveProperties resolves bag against specs at stepID. Keyable specs go
// through Keyable resolution; non-keyable specs read the bare Initial value
// even when the stored value is keyed. Missing keys and values that do not
// coerce to the PropertySpec's Kind resolve to its Default. Keys not named by
// any spec are dropped.
func ResolveProperties(specs []PropertySpec, bag PropertyBag, sceneStepIDs []string, stepID string) ResolvedProperties {
	out := make(ResolvedProperties, len(specs))
	for _, spec := range specs {
		raw, ok := bag[spec.Key]
		if !ok {
			out[spec.Key] = spec.Default
			continue
		}
		var v any
		if spec.Keyable {
			v = raw.ValueAt(sceneStepIDs, stepID)
		} else {
			v = raw.Initial
		}
		if c, ok := coerceProperty(spec.Kind, v); ok {
			out[spec.Key] = c
		} else {
			out[spec.Key] = spec.Default
		}
	}
	return out
}

// DefaultProperties returns a bag holding every spec's default, unkeyed.
func DefaultProperties(specs []PropertySpec) PropertyBag {
	bag := make(PropertyBag, len(specs))
	for _, spec := range specs {
		bag[spec.Key] = Unkeyed(spec.Default)
	}
	return bag
}

// coerceProperty converts v to kind. Decoded JSON yields float64, bool,
// string and map[string]any, so colors and vectors are accepted in map form.
func coerceProperty(kind PropertyKind, v any) (any, bool) {
	switch kind {
	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		}
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindColor:
		switch c := v.(type) {
		case Color:
			return c, true
		case map[string]any:
			r, ok1 := c["r"].(float64)
			g, ok2 := c["g"].(float64)
			b, ok3 := c["b"].(float64)
			if !ok1 || !ok2 || !ok3 {
				return nil, false
			}
			a, ok := c["a"].(float64)
			if !ok {
				a = 1
			}
			return Color{R: r, G: g, B: b, A: a}, true
		}
	case KindVec2:
		switch p := v.(type) {
		case Vec2:
			return p, true
		case map[string]any:
			x, ok1 := p["x"].(float64)
			y, ok2 := p["y"].(float64)
			if !ok1 || !ok2 {
				return nil, false
			}
			return Vec2{X: x, Y: y}, true
		}
	}
	return nil, false
}
