package common

func Filter[T any](slice []T, f func(T) bool) []T {
	result := []T{}
	for _, item := range slice {
		if f(item) {
			result = append(result, item)
		}
	}
	return result
}

// Page returns the window [offset, offset+limit) of slice, clamped to its bounds
func Page[T any](slice []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}

	if offset >= len(slice) {
		return []T{}
	}

	end := len(slice)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return slice[offset:end]
}
