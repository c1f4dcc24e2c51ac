package character

// ArmorID names an armor tier.
type ArmorID string

const (
	ArmorClothes ArmorID = "clothes"
	ArmorLight   ArmorID = "light"
	ArmorMedium  ArmorID = "medium"
	ArmorHeavy   ArmorID = "heavy"
)

// ShieldID names a shield tier.
type ShieldID string

const (
	ShieldNone   ShieldID = "none"
	ShieldLight  ShieldID = "light"
	ShieldMedium ShieldID = "medium"
	ShieldHeavy  ShieldID = "heavy"
)

// ArmorDef is the static rule row for one armor tier.
type ArmorDef struct {
	ID            ArmorID
	DR            int
	ParryModifier int
	AllowsParry   bool
	AllowsDodge   bool
	HeavyClass    bool // defense stance grants DR instead of a check bonus
}

// ShieldDef is the static rule row for one shield tier.
type ShieldDef struct {
	ID           ShieldID
	DR           int
	AllowsParry  bool
	AllowsDodge  bool
	SkillPenalty map[Skill]int
}

var armors = map[ArmorID]ArmorDef{
	ArmorClothes: {ID: ArmorClothes, DR: 0, ParryModifier: -3, AllowsParry: true, AllowsDodge: true},
	ArmorLight:   {ID: ArmorLight, DR: 1, ParryModifier: -2, AllowsParry: true, AllowsDodge: true},
	ArmorMedium:  {ID: ArmorMedium, DR: 2, AllowsParry: true, AllowsDodge: true},
	ArmorHeavy:   {ID: ArmorHeavy, DR: 3, HeavyClass: true},
}

var shields = map[ShieldID]ShieldDef{
	ShieldNone:   {ID: ShieldNone, AllowsParry: true, AllowsDodge: true},
	ShieldLight:  {ID: ShieldLight, DR: 1, AllowsParry: true, AllowsDodge: true},
	ShieldMedium: {ID: ShieldMedium, DR: 1, AllowsParry: true, SkillPenalty: map[Skill]int{SkillStealth: -1, SkillSleight: -1}},
	ShieldHeavy:  {ID: ShieldHeavy, DR: 2, SkillPenalty: map[Skill]int{SkillStealth: -2, SkillSleight: -2, SkillAwareness: -2}},
}

// BaseParryThreshold is the margin over the attack DC a defense roll needs
// to become a parry before armor adjustments.
const BaseParryThreshold = 10

// Armor returns the rule row for id. The empty id means clothes.
func Armor(id ArmorID) (ArmorDef, bool) {
	if id == "" {
		id = ArmorClothes
	}
	a, ok := armors[id]
	return a, ok
}

// Shield returns the rule row for id. The empty id means no shield.
func Shield(id ShieldID) (ShieldDef, bool) {
	if id == "" {
		id = ShieldNone
	}
	s, ok := shields[id]
	return s, ok
}
