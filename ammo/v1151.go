package ammo

import "github.com/fleetmod/escadra/estring"

// V1151 is the Ammo record of game version 1.151. It has no enemy firing
// sound, and the fields after ShopPrice were not yet identified.
type V1151 struct {
	Reticle   int32  `json:"reticle" yaml:"reticle"`
	Padding4h uint32 `json:"padding_4h" yaml:"padding_4h"`

	ItemName      estring.String `json:"item_name" yaml:"item_name"`
	ShellKind     estring.String `json:"shell_kind" yaml:"shell_kind"`
	ShellKind2    estring.String `json:"shell_kind2" yaml:"shell_kind2"`
	Milimeterage  estring.String `json:"milimeterage" yaml:"milimeterage"`
	MagazineImage estring.String `json:"magazine_image" yaml:"magazine_image"`
	SignAmmo      estring.String `json:"sign_ammo" yaml:"sign_ammo"`

	BulletHeight float32 `json:"bullet_height" yaml:"bullet_height"`
	PaddingCCh   uint32  `json:"padding_cch" yaml:"padding_cch"`

	ShellIn  estring.String `json:"shell_in" yaml:"shell_in"`
	ShellOut estring.String `json:"shell_out" yaml:"shell_out"`
	ShellFar estring.String `json:"shell_far" yaml:"shell_far"`

	Caliber          int32   `json:"caliber" yaml:"caliber"`
	Index            int32   `json:"index" yaml:"index"`
	Speed            float32 `json:"speed" yaml:"speed"`
	APDrag           float32 `json:"ap_drag" yaml:"ap_drag"`
	ExplosivePower   float32 `json:"explosive_power" yaml:"explosive_power"`
	PenetrativePower float32 `json:"penetrative_power" yaml:"penetrative_power"`
	IncendiaryPower  float32 `json:"incendiary_power" yaml:"incendiary_power"`
	ShopPrice        int32   `json:"shop_price" yaml:"shop_price"`
	Unknown150h      float32 `json:"unknown_150h" yaml:"unknown_150h"`
	Unknown154h      float32 `json:"unknown_154h" yaml:"unknown_154h"`
	// Unknown158h is 0.5 by default, like FireDelay in 1.163.
	Unknown158h float32 `json:"unknown_158h" yaml:"unknown_158h"`
	Unknown15Ch int32   `json:"unknown_15ch" yaml:"unknown_15ch"`
	Unknown160h float32 `json:"unknown_160h" yaml:"unknown_160h"`
	Padding164h uint32  `json:"padding_164h" yaml:"padding_164h"`
}

// Version returns the game version the record belongs to.
func (V1151) Version() string { return "1.151" }
