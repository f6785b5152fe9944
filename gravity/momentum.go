package gravity

import (
	"reflect"
	"sort"

	"github.com/milk9111/gravityhelper/accessor"
)

// Mover is a tracked object whose velocity follows gravity changes.
type Mover interface {
	Velocity() (x, y float64)
	SetVelocity(x, y float64)
}

// WorldFramed movers report velocity in world space. Their direction of
// travel already follows gravity, so the policy never inverts it.
type WorldFramed interface {
	WorldFrame() bool
}

// Instanced movers expose the host struct the policy resets fields on.
type Instanced interface {
	Instance() any
}

type FieldReset struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// MomentumPolicy says what happens to a mover's momentum when gravity flips.
type MomentumPolicy struct {
	InvertSpeedY bool         `yaml:"invert_speed_y"`
	SpeedYScale  float64      `yaml:"speed_y_scale"`
	Fields       []FieldReset `yaml:"fields"`
}

// DefaultMomentumPolicy inverts vertical speed and clears the jump and dash
// state a bounce would clear.
func DefaultMomentumPolicy() MomentumPolicy {
	return MomentumPolicy{
		InvertSpeedY: true,
		SpeedYScale:  1,
		Fields: []FieldReset{
			{"jumpGraceTimer", 0.0},
			{"varJumpTimer", 0.0},
			{"dashAttackTimer", 0.0},
			{"gliderBoostTimer", 0.0},
			{"wallSlideTimer", 1.2},
			{"wallBoostTimer", 0.0},
			{"varJumpSpeed", 0.0},
			{"launched", false},
		},
	}
}

// Clamp keeps the scale non-negative.
func (p *MomentumPolicy) Clamp() {
	p.SpeedYScale = max(0, p.SpeedYScale)
}

type boundField struct {
	member *accessor.Member
	value  any
}

// BoundPolicy is a policy resolved against one host type.
type BoundPolicy struct {
	policy MomentumPolicy
	owner  reflect.Type
	fields []boundField
}

// Bind resolves the policy's fields on owner. Fields the owner does not have
// are returned and left out; they are never guessed at.
func (p MomentumPolicy) Bind(owner reflect.Type) (*BoundPolicy, []string) {
	b := &BoundPolicy{policy: p, owner: owner}
	var missing []string
	for _, f := range p.Fields {
		m, err := accessor.Resolve(owner, f.Field)
		if err != nil || m.Kind() != accessor.KindField {
			missing = append(missing, f.Field)
			continue
		}
		b.fields = append(b.fields, boundField{member: m, value: f.Value})
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		log.Warningf("gravity: momentum policy: %s lacks %v, dropped", owner, missing)
	}
	return b, missing
}

// Fields lists the bound field names in policy order.
func (b *BoundPolicy) Fields() []string {
	names := make([]string, len(b.fields))
	for i, f := range b.fields {
		names[i] = f.member.Name()
	}
	return names
}

// Apply transforms the mover's velocity and resets its instance fields.
func (b *BoundPolicy) Apply(m Mover) {
	x, y := m.Velocity()
	wf, ok := m.(WorldFramed)
	if b.policy.InvertSpeedY && !(ok && wf.WorldFrame()) {
		y = -y
	}
	m.SetVelocity(x, y*b.policy.SpeedYScale)
	if in, ok := m.(Instanced); ok {
		b.Reset(in.Instance())
	}
}

// Reset writes the policy's field values into obj.
func (b *BoundPolicy) Reset(obj any) {
	if obj == nil {
		return
	}
	for _, f := range b.fields {
		if err := f.member.Set(obj, f.value); err != nil {
			log.Errorf("gravity: momentum policy: %v", err)
		}
	}
}
