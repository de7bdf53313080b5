package ammo

// Reticle values used by the vanilla ammo table.
const (
	ReticleStandard = 1
	ReticleBomb     = 2
	ReticleRocket   = 3
	ReticleAircraft = 4
)

// Caliber values select shell behavior.
const (
	CaliberDefault   = 100
	CaliberRocket    = 130
	CaliberGuided    = 140
	CaliberProximity = 160
)

// Reticle signs of the vanilla rounds.
const (
	SignUnset         = "sign_ammo_unset"
	SignIncendiarySml = "sign_ammo_inc_small"
	SignArmorPiercing = "sign_ammo_ap"
	SignProxy         = "sign_ammo_proxy"
	SignIncendiary    = "sign_ammo_inc"
	SignGuided        = "sign_ammo_guided"
	SignCraft         = "sign_ammo_craft"
)

// Record sizes in the game's memory.
const (
	SizeV1151 = 0x168
	SizeV1163 = 0x188
)
