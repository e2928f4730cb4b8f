package geom

/** @brief One user attribute value bound at a location. */
type attribEntry[T float32 | int32 | float64] struct {
	location int32
	values   []T
}

/**
 * @brief User attribute values in insertion order. Setting a location that
 * already exists replaces the value in place and keeps its position.
 */
type attribList[T float32 | int32 | float64] []attribEntry[T]

func (l *attribList[T]) set(location int32, values []T) {
	v := append([]T(nil), values...)
	for i := range *l {
		if (*l)[i].location == location {
			(*l)[i].values = v
			return
		}
	}
	*l = append(*l, attribEntry[T]{location, v})
}

func (l attribList[T]) get(location int32) ([]T, bool) {
	for _, e := range l {
		if e.location == location {
			return e.values, true
		}
	}
	return nil, false
}

func (l *attribList[T]) remove(location int32) bool {
	for i, e := range *l {
		if e.location == location {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

func (l attribList[T]) locations() []int32 {
	out := make([]int32, len(l))
	for i, e := range l {
		out[i] = e.location
	}
	return out
}
