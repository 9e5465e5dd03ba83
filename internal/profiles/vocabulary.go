package profiles

// TagVocabulary is the closed tag set the oracle is asked to choose from.
// Consistency checks treat out-of-vocabulary tags as advisory, not fatal,
// since older indexes predate some entries.
var TagVocabulary = []string{
	// Structure
	"wall", "floor", "door", "window", "roof", "climbable",
	// Terrain and nature
	"terrain", "vegetation", "water",
	// Entities
	"character", "creature",
	// Objects
	"prop", "equipment", "container", "item",
	// Modifiers
	"corner", "damaged", "exterior",
	// Materials
	"wood", "stone", "metal", "dirt", "fabric", "crystal",
	// Other
	"hazard", "ui", "icon", "path", "overlay",
	// Dungeon features
	"altar", "stairs", "trap", "fountain", "statue", "pillar", "gate",
	"portal", "sigil", "rune",
	// Terrain, expanded
	"lava", "tree", "cloud", "blood",
	// Entity types
	"undead", "demon", "dragon", "humanoid", "beast", "insect",
	"skeleton", "ghost", "spectral", "slime", "tentacle",
	// Items and equipment
	"weapon", "armour", "potion", "scroll", "wand", "ring", "amulet",
	"food", "gold", "book", "shield", "sword",
	// Combat and magic
	"spell", "effect", "corpse", "projectile", "brand",
	"fire", "ice", "poison", "sacred", "holy", "unholy", "shadow", "melee", "ranged",
	// General modifiers
	"magical", "unique", "boss", "player", "aquatic",
	// General expansions
	"interior", "furniture", "building", "fence", "bridge", "sign", "light",
	"chest", "barrel", "crate", "banner", "flag",
	"arachnid", "skull",
	"coin", "gem", "key", "heart",
	"animated", // animation frame (e.g. _walk_1, _idle), not "a living thing"
	"variant",  // visual variant of another sprite (e.g. _2, _alt)
	"modern", "tech",
}

// InVocabulary reports whether tag is part of the closed set.
func InVocabulary(tag string) bool {
	for _, t := range TagVocabulary {
		if t == tag {
			return true
		}
	}
	return false
}
