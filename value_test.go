package serde_test

import (
	"slices"
	"testing"

	"github.com/zoobzio/serde"
)

func TestSection_Order(t *testing.T) {
	s := serde.NewSection().
		With("b", serde.IntValue(1)).
		With("a", serde.IntValue(2)).
		With("c", serde.IntValue(3))

	if got := s.Keys(); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("Keys() = %v, want [b a c]", got)
	}

	s.Set("a", serde.IntValue(20))
	if got := s.Keys(); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("Keys() after overwrite = %v, want [b a c]", got)
	}
	if v, _ := s.GetInt("a"); v != 20 {
		t.Errorf("GetInt(a) = %d, want 20", v)
	}

	s.Remove("b")
	if got := s.Keys(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Keys() after remove = %v, want [a c]", got)
	}
}

func TestSection_SetNilRemoves(t *testing.T) {
	s := serde.NewSection().With("a", serde.StringValue("x"))
	s.Set("a", nil)

	if s.Has("a") {
		t.Error("Set(nil) should remove the key")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSection_TypedGetters(t *testing.T) {
	child := serde.NewSection().With("x", serde.IntValue(1))
	s := serde.NewSection().
		With("name", serde.StringValue("api")).
		With("port", serde.IntValue(8080)).
		With("ratio", serde.FloatValue(0.5)).
		With("debug", serde.BoolValue(true)).
		With("payload", serde.NewBlob([]byte{1, 2})).
		With("tags", serde.NewList(serde.StringValue("a"))).
		With("child", child)

	if v, ok := s.GetString("name"); !ok || v != "api" {
		t.Errorf("GetString(name) = %q, %v", v, ok)
	}
	if v, ok := s.GetInt("port"); !ok || v != 8080 {
		t.Errorf("GetInt(port) = %d, %v", v, ok)
	}
	if _, ok := s.GetInt("ratio"); ok {
		t.Error("GetInt(ratio) should fail for 0.5")
	}
	if v, ok := s.GetBool("debug"); !ok || !v {
		t.Errorf("GetBool(debug) = %v, %v", v, ok)
	}
	if v, ok := s.GetBlob("payload"); !ok || len(v) != 2 {
		t.Errorf("GetBlob(payload) = %v, %v", v, ok)
	}
	if v, ok := s.GetList("tags"); !ok || v.Len() != 1 {
		t.Errorf("GetList(tags) = %v, %v", v, ok)
	}
	if v, ok := s.GetSection("child"); !ok || !v.Has("x") {
		t.Errorf("GetSection(child) = %v, %v", v, ok)
	}
	if _, ok := s.GetString("port"); ok {
		t.Error("GetString(port) should fail for a number")
	}
	if _, ok := s.GetSection("missing"); ok {
		t.Error("GetSection(missing) should fail")
	}
}

func TestCopy_Independent(t *testing.T) {
	orig := serde.NewSection().
		With("tags", serde.NewList(serde.StringValue("a"))).
		With("child", serde.NewSection().With("x", serde.IntValue(1)))

	cp := orig.Copy().(*serde.Section)
	cp.GetOrCreateSection("child").Set("x", serde.IntValue(2))
	tags, _ := cp.GetList("tags")
	tags.Append(serde.StringValue("b"))

	child, _ := orig.GetSection("child")
	if v, _ := child.GetInt("x"); v != 1 {
		t.Errorf("original child.x = %d, want 1", v)
	}
	origTags, _ := orig.GetList("tags")
	if origTags.Len() != 1 {
		t.Errorf("original tags Len() = %d, want 1", origTags.Len())
	}
}

func TestCopy_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		v    serde.Value
	}{
		{"primitive", serde.StringValue("a")},
		{"blob", serde.NewBlob([]byte{1, 2})},
		{"list", serde.NewList(serde.IntValue(1), serde.NewList(serde.StringValue("x")))},
		{"frozen list", serde.NewList(serde.IntValue(1)).Freeze()},
		{"section", serde.NewSection().With("a", serde.NewSection().With("b", serde.BoolValue(true)))},
		{"frozen section", serde.NewSection().With("a", serde.IntValue(1)).Freeze()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := tt.v.Copy()
			if cp == tt.v {
				t.Error("Copy() returned the same node")
			}
			if !serde.Equal(cp, tt.v) {
				t.Errorf("Copy() = %v, want %v", cp, tt.v)
			}
			if !serde.Equal(cp.Copy(), cp) {
				t.Errorf("Copy().Copy() = %v, want %v", cp.Copy(), cp)
			}
		})
	}
}

func TestFreeze_CopyOnWrite(t *testing.T) {
	orig := serde.NewSection().
		With("a", serde.IntValue(1)).
		With("list", serde.NewList(serde.IntValue(1)))

	frozen := orig.Freeze().(serde.Mapping)
	if !frozen.Frozen() {
		t.Fatal("Freeze() should return a frozen section")
	}

	updated := frozen.Set("b", serde.IntValue(2))
	if updated.Frozen() {
		t.Error("Set() on a frozen section should return a mutable copy")
	}
	if frozen.Has("b") {
		t.Error("frozen section should not change")
	}
	if !updated.Has("a") || !updated.Has("b") {
		t.Errorf("copy keys = %v, want [a list b]", updated.Keys())
	}

	list, _ := frozen.GetList("list")
	if !list.Frozen() {
		t.Error("nested list should be frozen")
	}
	appended := list.Append(serde.IntValue(2))
	if list.Len() != 1 || appended.Len() != 2 {
		t.Errorf("Len() = %d/%d, want 1/2", list.Len(), appended.Len())
	}

	if frozen.SetMetaProperty("k", "v") {
		t.Error("frozen section should refuse metadata")
	}
}

func TestFreezeValue_Nil(t *testing.T) {
	if serde.FreezeValue(nil) != nil {
		t.Error("FreezeValue(nil) should be nil")
	}
	if serde.CopyValue(nil) != nil {
		t.Error("CopyValue(nil) should be nil")
	}
}

func TestFill(t *testing.T) {
	dst := serde.NewSection().
		With("name", serde.StringValue("svc")).
		With("owner", serde.NewSection().With("email", serde.StringValue("a@b.c")))
	defaults := serde.NewSection().
		With("name", serde.StringValue("default")).
		With("port", serde.IntValue(7000)).
		With("owner", serde.NewSection().With("name", serde.StringValue("root")).With("email", serde.StringValue("root@host")))

	dst.Fill(defaults)

	want := serde.NewSection().
		With("name", serde.StringValue("svc")).
		With("owner", serde.NewSection().With("email", serde.StringValue("a@b.c")).With("name", serde.StringValue("root"))).
		With("port", serde.IntValue(7000))
	if !serde.Equal(dst, want) {
		t.Errorf("Fill() keys = %v", dst.Keys())
	}
}

func TestFillOverwrite(t *testing.T) {
	dst := serde.NewSection().
		With("name", serde.StringValue("svc")).
		With("owner", serde.NewSection().With("email", serde.StringValue("a@b.c")))
	other := serde.NewSection().
		With("name", serde.StringValue("other")).
		With("owner", serde.NewSection().With("name", serde.StringValue("root")))

	dst.FillOverwrite(other)

	if v, _ := dst.GetString("name"); v != "other" {
		t.Errorf("name = %q, want other", v)
	}
	owner, _ := dst.GetSection("owner")
	if !slices.Equal(owner.Keys(), []string{"name"}) {
		t.Errorf("owner keys = %v, want [name]", owner.Keys())
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b serde.Value
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and value", nil, serde.StringValue(""), false},
		{"strings", serde.StringValue("a"), serde.StringValue("a"), true},
		{"int and float", serde.IntValue(2), serde.FloatValue(2), true},
		{"string and number", serde.StringValue("2"), serde.IntValue(2), false},
		{"blobs", serde.NewBlob([]byte("x")), serde.NewBlob([]byte("x")), true},
		{
			"list order",
			serde.NewList(serde.IntValue(1), serde.IntValue(2)),
			serde.NewList(serde.IntValue(2), serde.IntValue(1)),
			false,
		},
		{
			"section order ignored",
			serde.NewSection().With("a", serde.IntValue(1)).With("b", serde.IntValue(2)),
			serde.NewSection().With("b", serde.IntValue(2)).With("a", serde.IntValue(1)),
			true,
		},
		{
			"frozen and mutable",
			serde.NewList(serde.BoolValue(true)).Freeze(),
			serde.NewList(serde.BoolValue(true)),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serde.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetaProperty(t *testing.T) {
	v := serde.StringValue("x")
	if !v.SetMetaProperty("comment", "hello") {
		t.Fatal("SetMetaProperty() = false, want true")
	}
	if got, ok := v.MetaProperty("comment"); !ok || got != "hello" {
		t.Errorf("MetaProperty() = %q, %v, want hello, true", got, ok)
	}

	cp := v.Copy()
	cp.SetMetaProperty("comment", "changed")
	if got, _ := v.MetaProperty("comment"); got != "hello" {
		t.Errorf("original MetaProperty() = %q, want hello", got)
	}

	if !serde.Equal(v, cp) {
		t.Error("metadata should not take part in equality")
	}
}

func TestList_Mutation(t *testing.T) {
	l := serde.NewList(serde.IntValue(1), serde.IntValue(2), serde.IntValue(3))
	l.Put(1, serde.IntValue(20))
	l.Remove(0)
	l.Put(10, serde.IntValue(99))

	want := serde.NewList(serde.IntValue(20), serde.IntValue(3))
	if !serde.Equal(l, want) {
		t.Errorf("list = %v, want [20 3]", l.Values())
	}
	if !l.Contains(serde.FloatValue(3)) {
		t.Error("Contains(3.0) = false, want true")
	}
	if l.At(5) != nil {
		t.Error("At(out of range) should be nil")
	}
}
