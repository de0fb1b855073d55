package serde

import "slices"

// GroupEntry is one positional part of a group serializer. It is
// implemented by *GroupPart.
type GroupEntry[S any] interface {
	serialize(ctx Context[any], value S) Result[any]
	deserialize(ctx Context[any], raw any) Outcome
}

// GroupPart is a serializer applied to the whole node, paired with the
// getter that extracts its value from S.
type GroupPart[F, S any] struct {
	ser Serializer[F]
	get func(S) F
}

// Part declares a group part.
func Part[F, S any](ser Serializer[F], get func(S) F) *GroupPart[F, S] {
	return &GroupPart[F, S]{ser: ser, get: get}
}

// From returns the decoded value of this part.
func (p *GroupPart[F, S]) From(fields Fields) F {
	return fieldValue[F](fields, p)
}

func (p *GroupPart[F, S]) serialize(ctx Context[any], value S) Result[any] {
	return p.ser.Serialize(ctx, p.get(value))
}

func (p *GroupPart[F, S]) deserialize(ctx Context[any], raw any) Outcome {
	return p.ser.Deserialize(ctx, raw)
}

// GroupSerializer is the positional analogue of ObjectSerializer: every
// part reads the same node, and the encodings of all parts are merged into
// one node on serialize.
type GroupSerializer[S any] struct {
	parts []GroupEntry[S]
	build func(Fields) S
}

// Group declares a group serializer from its parts and a constructor that
// reads them back by position or through GroupPart.From.
func Group[S any](build func(fields Fields) S, parts ...GroupEntry[S]) *GroupSerializer[S] {
	return &GroupSerializer[S]{parts: slices.Clone(parts), build: build}
}

func (g *GroupSerializer[S]) Serialize(ctx Context[any], value S) Result[any] {
	if len(g.parts) == 0 {
		return Ok(EmptyMap(ctx))
	}
	var out any
	for i, p := range g.parts {
		node, err := p.serialize(ctx, value).Get()
		if err != nil {
			return Fail[any](err)
		}
		if i == 0 {
			out = node
			continue
		}
		out = Merge(ctx, out, node)
	}
	return Ok(out)
}

func (g *GroupSerializer[S]) Deserialize(ctx Context[any], raw any) Result[S] {
	results := make([]Outcome, len(g.parts))
	ids := make([]any, len(g.parts))
	for i, p := range g.parts {
		results[i] = p.deserialize(ctx, raw)
		ids[i] = p
	}
	return Map(All(results...), func(t Tuple) S {
		return g.build(newFields(t, ids))
	})
}
