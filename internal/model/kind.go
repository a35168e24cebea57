package model

// ActorKind selects the actor schema (field set and defaults).
type ActorKind string

const (
	KindCharacter ActorKind = "Character"
	KindNPC       ActorKind = "NPC"
)

// Valid reports whether k is a known actor kind.
func (k ActorKind) Valid() bool {
	return k == KindCharacter || k == KindNPC
}

// ItemType is the item document type.
type ItemType string

const (
	ItemEquipment   ItemType = "Equipment"
	ItemTraitTalent ItemType = "Trait or Talent"
	ItemSpell       ItemType = "Spell"
	ItemAncestry    ItemType = "Ancestry"
	ItemProfession  ItemType = "Profession"
	ItemPath        ItemType = "Path"
)

// IsCharOption reports whether items of this type grant benefits by level.
func (t ItemType) IsCharOption() bool {
	return t == ItemAncestry || t == ItemProfession || t == ItemPath
}

// Attr is an attribute key.
type Attr string

const (
	AttrStr  Attr = "str"
	AttrAgi  Attr = "agi"
	AttrInt  Attr = "int"
	AttrWil  Attr = "wil"
	AttrLuck Attr = "luck"
)

// Attributes lists the rolled attributes in sheet order. Luck is not an
// attribute field; it has no value and its modifier is always zero.
var Attributes = []Attr{AttrStr, AttrAgi, AttrInt, AttrWil}

// Valid reports whether a is a rollable attribute key (luck included).
func (a Attr) Valid() bool {
	switch a {
	case AttrStr, AttrAgi, AttrInt, AttrWil, AttrLuck:
		return true
	}
	return false
}

// Label returns the display name of the attribute.
func (a Attr) Label() string {
	switch a {
	case AttrStr:
		return "Strength"
	case AttrAgi:
		return "Agility"
	case AttrInt:
		return "Intellect"
	case AttrWil:
		return "Will"
	case AttrLuck:
		return "Luck"
	}
	return string(a)
}

// AgainstDefense is the "against" value that targets Defense instead of an attribute.
const AgainstDefense = "def"

// ValidAgainst reports whether s names a valid roll threshold source.
// Empty means "no against attribute" (shared roll against a fixed threshold).
func ValidAgainst(s string) bool {
	if s == "" || s == AgainstDefense {
		return true
	}
	a := Attr(s)
	return a.Valid() && a != AttrLuck
}
