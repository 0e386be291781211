package template

// Options overrides template defaults by option name, e.g. {"x": 10, "health": 50}.
type Options map[string]any

// Part is one component of a template bundle.
type Part struct {
	Component string `yaml:"component"`
	// Fields are default field values.
	Fields map[string]any `yaml:"fields"`
	// Options maps a field to the option name that overrides it. Several
	// fields may share one option.
	Options map[string]string `yaml:"options"`
}

// Template is a named entity archetype.
type Template struct {
	Name  string `yaml:"name"`
	Parts []Part `yaml:"components"`
}

// Components lists the component names of t in declaration order.
func (t Template) Components() []string {
	out := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		out[i] = p.Component
	}
	return out
}

func builtins() []Template {
	position := Part{
		Component: "Position",
		Fields:    map[string]any{"x": 0.0, "y": 0.0},
		Options:   map[string]string{"x": "x", "y": "y"},
	}
	velocity := Part{
		Component: "Velocity",
		Fields:    map[string]any{"vx": 0.0, "vy": 0.0},
		Options:   map[string]string{"vx": "vx", "vy": "vy"},
	}
	sprite := func(texture string, size float64) Part {
		return Part{
			Component: "Sprite",
			Fields:    map[string]any{"texture": texture, "width": size, "height": size},
			Options:   map[string]string{"texture": "texture", "tint": "tint", "layer": "layer"},
		}
	}
	tag := func(label string) Part {
		return Part{
			Component: "Tag",
			Fields:    map[string]any{"label": label},
			Options:   map[string]string{"label": "name"},
		}
	}

	return []Template{
		{
			Name: "player",
			Parts: []Part{
				position,
				velocity,
				{
					Component: "Health",
					Fields:    map[string]any{"current": 100, "max": 100},
					Options:   map[string]string{"current": "health", "max": "health"},
				},
				sprite("player.png", 32),
				{Component: "Collider", Fields: map[string]any{"width": 32.0, "height": 32.0, "solid": true}},
				{
					Component: "PlayerControl",
					Fields:    map[string]any{"speed": 200.0},
					Options:   map[string]string{"speed": "speed"},
				},
				tag("player"),
			},
		},
		{
			Name: "enemy",
			Parts: []Part{
				position,
				velocity,
				{
					Component: "Health",
					Fields:    map[string]any{"current": 50, "max": 50},
					Options:   map[string]string{"current": "health", "max": "health"},
				},
				sprite("enemy.png", 32),
				{Component: "Collider", Fields: map[string]any{"width": 32.0, "height": 32.0, "solid": true}},
				{
					Component: "AIControl",
					Fields:    map[string]any{"behavior": "patrol", "speed": 100.0, "detectionRange": 150.0},
					Options:   map[string]string{"behavior": "behavior", "speed": "speed", "detectionRange": "range"},
				},
				tag("enemy"),
			},
		},
		{
			Name: "obstacle",
			Parts: []Part{
				position,
				sprite("wall.png", 64),
				{
					Component: "Collider",
					Fields:    map[string]any{"width": 64.0, "height": 64.0, "solid": true},
					Options:   map[string]string{"width": "width", "height": "height"},
				},
				tag("obstacle"),
			},
		},
		{
			Name: "pickup",
			Parts: []Part{
				position,
				sprite("coin.png", 16),
				{Component: "Collider", Fields: map[string]any{"width": 16.0, "height": 16.0, "solid": false}},
				{
					Component: "Pickup",
					Fields:    map[string]any{"kind": "coin", "value": 1},
					Options:   map[string]string{"kind": "kind", "value": "value"},
				},
				tag("pickup"),
			},
		},
	}
}
