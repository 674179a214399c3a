package sconfig

// MaskType names a display masking rule for a field.
// Use these constants in struct tags: `mask:"email"`
type MaskType string

const (
	// MaskSecret hides the whole value.
	MaskSecret MaskType = "secret"

	// MaskEmail keeps the first character of the local part and the domain.
	MaskEmail MaskType = "email"

	// MaskCard keeps the last four digits.
	MaskCard MaskType = "card"

	// MaskIP keeps the network half of an address.
	MaskIP MaskType = "ip"

	// MaskUUID keeps the first group.
	MaskUUID MaskType = "uuid"

	// MaskURL hides the userinfo of a URL.
	MaskURL MaskType = "url"
)

// HashAlgo names a one-way hashing serializer.
// Use these constants in struct tags: `serialize:"argon2"`
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"
)

// validMaskTypes contains all valid mask types for tag validation.
var validMaskTypes = map[MaskType]bool{
	MaskSecret: true,
	MaskEmail:  true,
	MaskCard:   true,
	MaskIP:     true,
	MaskUUID:   true,
	MaskURL:    true,
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}
