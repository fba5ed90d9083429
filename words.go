package conquest

// Words is used to build human-readable game IDs. Underscores mark word
// boundaries, so "iron_gate" becomes "IronGate".
var Words = []string{
	"amber", "anvil", "arrow", "ash", "banner", "bastion", "beacon", "blade",
	"border", "bridge", "castle", "cinder", "citadel", "cliff", "comet",
	"crown", "dagger", "dawn", "delta", "dragon", "dune", "eagle", "ember",
	"falcon", "fjord", "flint", "forge", "fort", "frost", "garnet", "glacier",
	"granite", "griffin", "harbor", "hawk", "helm", "herald", "hollow",
	"iron_gate", "ivory", "jade", "keep", "lance", "lantern", "marsh",
	"meadow", "mesa", "moat", "monolith", "north_star", "oak", "onyx", "orchard",
	"outpost", "paladin", "pike", "quarry", "rampart", "raven", "reef", "ridge",
	"river", "saber", "sentinel", "shield", "spire", "stone", "storm", "summit",
	"sword", "thicket", "throne", "thunder", "tower", "valley", "vanguard",
	"warden", "watchtower", "willow", "wolf", "zenith",
}
