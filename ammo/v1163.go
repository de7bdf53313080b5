package ammo

import (
	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/estring"
)

// V1163 is the Ammo record of game version 1.163.
type V1163 struct {
	// Reticle drawn when firing; see the Reticle constants.
	Reticle   int32  `json:"reticle" yaml:"reticle"`
	Padding4h uint32 `json:"padding_4h" yaml:"padding_4h"`

	// ItemName is the internal item name.
	ItemName estring.String `json:"item_name" yaml:"item_name"`
	// ShellKind is the shop label, e.g. "Incendiary".
	ShellKind estring.String `json:"shell_kind" yaml:"shell_kind"`
	// ShellKind2 is the internal kind, e.g. "@INCENDIARY".
	ShellKind2 estring.String `json:"shell_kind2" yaml:"shell_kind2"`
	// Milimeterage is the shop caliber label, e.g. "57mm".
	Milimeterage estring.String `json:"milimeterage" yaml:"milimeterage"`
	// MagazineImage names an image or a full animation frame from the .res
	// files.
	MagazineImage estring.String `json:"magazine_image" yaml:"magazine_image"`
	// SignAmmo is the reticle sign; see the Sign constants.
	SignAmmo estring.String `json:"sign_ammo" yaml:"sign_ammo"`

	BulletHeight float32 `json:"bullet_height" yaml:"bullet_height"`
	// PaddingCCh is unused by the game but must keep its vanilla value;
	// mods store shell behavior in it.
	PaddingCCh uint32 `json:"padding_cch" yaml:"padding_cch"`

	// Sound sets, named without the _NN suffix of their files.
	ShellIn    estring.String `json:"shell_in" yaml:"shell_in"`
	ShellOut   estring.String `json:"shell_out" yaml:"shell_out"`
	ShellEnemy estring.String `json:"shell_enemy" yaml:"shell_enemy"`
	ShellFar   estring.String `json:"shell_far" yaml:"shell_far"`

	Caliber int32 `json:"caliber" yaml:"caliber"`
	// Index is matched by a weapon's m_weapon_caliber.
	Index            int32   `json:"index" yaml:"index"`
	Speed            float32 `json:"speed" yaml:"speed"`
	APDrag           float32 `json:"ap_drag" yaml:"ap_drag"`
	ExplosivePower   float32 `json:"explosive_power" yaml:"explosive_power"`
	PenetrativePower float32 `json:"penetrative_power" yaml:"penetrative_power"`
	IncendiaryPower  float32 `json:"incendiary_power" yaml:"incendiary_power"`
	// TTL is how long the shell stays in the air.
	TTL       float32 `json:"ttl" yaml:"ttl"`
	ShopPrice int32   `json:"shop_price" yaml:"shop_price"`
	// ShopRarity is between 0 and 1; 0 for regular ammo.
	ShopRarity  float32 `json:"shop_rarity" yaml:"shop_rarity"`
	ShopAmmount float32 `json:"shop_ammount" yaml:"shop_ammount"`
	// FireDelay is the time between trigger and release, 0.5 by default.
	FireDelay   float32 `json:"fire_delay" yaml:"fire_delay"`
	Unknown180h int32   `json:"unknown_180h" yaml:"unknown_180h"`
	Padding184h uint32  `json:"padding_184h" yaml:"padding_184h"`
}

var v1163Aliases = aliasTable{
	"unknown_16ch": "ttl",
	"unknown_174h": "shop_rarity",
	"unknown_178h": "shop_ammount",
	"unknown_17ch": "fire_delay",
}

// Version returns the game version the record belongs to.
func (V1163) Version() string { return "1.163" }

func (a *V1163) UnmarshalJSON(data []byte) error {
	type plain V1163
	return unmarshalJSONAliased(data, (*plain)(a), v1163Aliases)
}

func (a *V1163) UnmarshalYAML(node *yaml.Node) error {
	type plain V1163
	return unmarshalYAMLAliased(node, (*plain)(a), v1163Aliases)
}
