package ammo

import (
	"reflect"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/memory"
	"github.com/fleetmod/escadra/record"
)

var stringCmp = cmp.Comparer(func(a, b estring.String) bool { return a.Equal(b) })

func incendiary57() V1163 {
	return V1163{
		Reticle:          ReticleStandard,
		ItemName:         estring.MustFrom("AMMO_57MM_INC"),
		ShellKind:        estring.MustFrom("Incendiary"),
		ShellKind2:       estring.MustFrom("@INCENDIARY"),
		Milimeterage:     estring.MustFrom("57mm"),
		MagazineImage:    estring.MustFrom("shell_57mm_inc"),
		SignAmmo:         estring.MustFrom(SignIncendiary),
		BulletHeight:     24,
		ShellIn:          estring.MustFrom("shell_in_small"),
		ShellOut:         estring.MustFrom("shell_out_small2"),
		ShellEnemy:       estring.MustFrom("shell_out_enemy_med"),
		ShellFar:         estring.MustFrom("shell_out_small_far"),
		Caliber:          CaliberRocket,
		Index:            7,
		Speed:            2400,
		APDrag:           0.0007,
		ExplosivePower:   150,
		PenetrativePower: 40,
		IncendiaryPower:  1000,
		TTL:              12,
		ShopPrice:        35,
		FireDelay:        0.5,
		Unknown180h:      10,
	}
}

func TestLayout_V1163(t *testing.T) {
	ct, err := record.NewCompiler().Compile(reflect.TypeOf(V1163{}))
	if err != nil {
		t.Fatal(err)
	}
	if ct.Size() != SizeV1163 {
		t.Fatalf("size = %#x, want %#x", ct.Size(), SizeV1163)
	}

	want := map[string]uint32{
		"reticle":        0x00,
		"padding_4h":     0x04,
		"item_name":      0x08,
		"shell_kind":     0x28,
		"shell_kind2":    0x48,
		"milimeterage":   0x68,
		"magazine_image": 0x88,
		"sign_ammo":      0xA8,
		"bullet_height":  0xC8,
		"padding_cch":    0xCC,
		"shell_in":       0xD0,
		"shell_out":      0xF0,
		"shell_enemy":    0x110,
		"shell_far":      0x130,
		"caliber":        0x150,
		"index":          0x154,
		"speed":          0x158,
		"ap_drag":        0x15C,
		"ttl":            0x16C,
		"shop_price":     0x170,
		"shop_rarity":    0x174,
		"shop_ammount":   0x178,
		"fire_delay":     0x17C,
		"unknown_180h":   0x180,
		"padding_184h":   0x184,
	}
	for name, off := range want {
		f, ok := ct.Field(name)
		if !ok {
			t.Errorf("missing field %s", name)
			continue
		}
		if f.Offset != off {
			t.Errorf("%s at %#x, want %#x", name, f.Offset, off)
		}
	}
	if ct.Info.Padding() != 0 {
		t.Errorf("unexpected implicit padding: %d bytes", ct.Info.Padding())
	}
}

func TestLayout_V1151(t *testing.T) {
	ct, err := record.NewCompiler().Compile(reflect.TypeOf(V1151{}))
	if err != nil {
		t.Fatal(err)
	}
	if ct.Size() != SizeV1151 {
		t.Fatalf("size = %#x, want %#x", ct.Size(), SizeV1151)
	}

	want := map[string]uint32{
		"shell_far":    0x110,
		"caliber":      0x130,
		"index":        0x134,
		"shop_price":   0x14C,
		"unknown_150h": 0x150,
		"unknown_15ch": 0x15C,
		"unknown_160h": 0x160,
		"padding_164h": 0x164,
	}
	for name, off := range want {
		if f, ok := ct.Field(name); !ok || f.Offset != off {
			t.Errorf("%s at %#x (found=%v), want %#x", name, f.Offset, ok, off)
		}
	}
	if _, ok := ct.Field("shell_enemy"); ok {
		t.Error("1.151 has no shell_enemy")
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	in := incendiary57()
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out V1163
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out, stringCmp); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestJSON_LegacyAliases(t *testing.T) {
	data := []byte(`{
		"item_name": "AMMO_100MM",
		"unknown_16ch": 30,
		"unknown_174h": 0.25,
		"unknown_178h": 120,
		"unknown_17ch": 0.2,
		"unknown_180h": 10
	}`)

	var a V1163
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatal(err)
	}
	if a.TTL != 30 || a.ShopRarity != 0.25 || a.ShopAmmount != 120 || a.FireDelay != 0.2 {
		t.Errorf("aliases not applied: ttl=%v rarity=%v amount=%v delay=%v", a.TTL, a.ShopRarity, a.ShopAmmount, a.FireDelay)
	}
	if a.ItemName.String() != "AMMO_100MM" || a.Unknown180h != 10 {
		t.Errorf("regular fields lost: %+v", a)
	}
}

func TestJSON_AliasConflict(t *testing.T) {
	var a V1163
	err := a.UnmarshalJSON([]byte(`{"ttl": 1, "unknown_16ch": 2}`))
	if !errors.Is(err, &errors.Error{Kind: errors.KindInvalidData}) {
		t.Errorf("got %v, want duplicate field error", err)
	}
}

func TestJSON_BadString(t *testing.T) {
	var a V1163
	if err := json.Unmarshal([]byte(`{"item_name": 5}`), &a); err == nil {
		t.Error("number in a string field should fail")
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	in := incendiary57()
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out V1163
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out, stringCmp); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestYAML_LegacyAliases(t *testing.T) {
	src := "item_name: AMMO_37MM_AIR\nunknown_16ch: 4\nunknown_17ch: 0.05\nshop_price: 12\n"

	var a V1163
	if err := yaml.Unmarshal([]byte(src), &a); err != nil {
		t.Fatal(err)
	}
	if a.TTL != 4 || a.FireDelay != 0.05 || a.ShopPrice != 12 {
		t.Errorf("got ttl=%v delay=%v price=%v", a.TTL, a.FireDelay, a.ShopPrice)
	}

	err := yaml.Unmarshal([]byte("fire_delay: 1\nunknown_17ch: 2\n"), &a)
	if !errors.Is(err, &errors.Error{Kind: errors.KindInvalidData}) {
		t.Errorf("got %v, want duplicate field error", err)
	}
}

func TestV1151_JSON(t *testing.T) {
	data := []byte(`{"item_name":"AMMO_85MM","shell_far":"shell_out_med_far","unknown_158h":0.5,"unknown_15ch":10}`)
	var a V1151
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatal(err)
	}
	if a.ShellFar.String() != "shell_out_med_far" || a.Unknown158h != 0.5 || a.Unknown15Ch != 10 {
		t.Errorf("got %+v", a)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	cfg := memory.Config{InitialPages: 1, HeapBase: 0x1000}
	buf := memory.NewBuffer(memory.PageSize)
	heap := memory.NewHeap(buf, cfg)
	list := memory.NewAllocationList()

	in := incendiary57()
	if err := record.NewEncoder().EncodeToMemory(&in, 0x100, buf, heap, list); err != nil {
		t.Fatal(err)
	}

	var out V1163
	if err := record.NewDecoder().DecodeFromMemory(0x100, buf, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out, stringCmp); diff != "" {
		t.Errorf("memory round trip mismatch (-in +out):\n%s", diff)
	}

	// shell_out, shell_enemy and shell_far exceed 15 bytes
	if list.Count() != 3 {
		t.Errorf("heap strings = %d, want 3", list.Count())
	}
	list.FreeAndRelease(heap)
	if heap.Live() != 0 {
		t.Errorf("Live() = %d", heap.Live())
	}
}

func TestRegistry(t *testing.T) {
	if got := Versions(); !slices.Equal(got, []string{"1.151", "1.163"}) {
		t.Errorf("Versions() = %v", got)
	}
	r, err := New("1.163")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*V1163); !ok || r.Version() != "1.163" {
		t.Errorf("New(1.163) = %T", r)
	}
	if _, err := New("2.0"); !errors.Is(err, &errors.Error{Kind: errors.KindNotFound}) {
		t.Errorf("unknown version: %v", err)
	}
}
