package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-hex object identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// CanonicalID parses id as an object identifier and returns its canonical
// lowercase hex form. Malformed input yields ErrInvalidSessionID.
func CanonicalID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrInvalidSessionID
	}
	return oid.Hex(), nil
}
