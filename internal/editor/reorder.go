package editor

// Reorder переносит элемент: вынимаем RemovedIndex, вставляем на AddedIndex.
// AddedIndex за концом укороченного списка — вставка в конец.
// Исходный срез не меняется.
func Reorder[T any](items []T, drop DropResult) ([]T, error) {
	if drop.RemovedIndex < 0 || drop.RemovedIndex >= len(items) || drop.AddedIndex < 0 {
		return items, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:drop.RemovedIndex]...)
	out = append(out, items[drop.RemovedIndex+1:]...)

	moved := items[drop.RemovedIndex]
	at := drop.AddedIndex
	if at >= len(out) {
		return append(out, moved), nil
	}
	out = append(out, moved)
	copy(out[at+1:], out[at:len(out)-1])
	out[at] = moved
	return out, nil
}

func removeAt[T any](items []T, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return items, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}
