// Package binding turns host metadata into ordered field descriptors.
package binding

import "github.com/spacesedan/sentitable/internal/models"

// Normalize flattens both metadata mappings into descriptor slices, one per
// entry, in insertion order. Missing mappings produce empty slices; callers
// check for emptiness.
func Normalize(meta models.Metadata) (dimensions, measures []models.FieldDescriptor) {
	return descriptors(meta.Dimensions), descriptors(meta.Measures)
}

func descriptors(fields models.FieldMap) []models.FieldDescriptor {
	out := make([]models.FieldDescriptor, 0, fields.Len())
	fields.Each(func(key string, fragment models.FieldFragment) bool {
		out = append(out, models.FieldDescriptor{
			Key:        key,
			Label:      label(key, fragment),
			Attributes: fragment.Attributes,
		})
		return true
	})
	return out
}

func label(key string, fragment models.FieldFragment) string {
	switch {
	case fragment.Description != "":
		return fragment.Description
	case fragment.ID != "":
		return fragment.ID
	default:
		return key
	}
}
