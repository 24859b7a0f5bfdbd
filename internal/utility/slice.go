package utility

// Contains kiểm tra một phần tử có trong slice hay không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Remove trả về slice mới đã loại bỏ lần xuất hiện đầu tiên của item.
// Giá trị trả về thứ hai cho biết item có được tìm thấy hay không.
func Remove[T comparable](slice []T, item T) ([]T, bool) {
	for i, v := range slice {
		if v == item {
			out := make([]T, 0, len(slice)-1)
			out = append(out, slice[:i]...)
			out = append(out, slice[i+1:]...)
			return out, true
		}
	}
	return slice, false
}

// AppendUnique thêm item vào slice nếu chưa có (ngữ nghĩa set).
// Giá trị trả về thứ hai cho biết item có được thêm hay không.
func AppendUnique[T comparable](slice []T, item T) ([]T, bool) {
	if Contains(slice, item) {
		return slice, false
	}
	return append(slice, item), true
}

// SwapAt hoán đổi hai phần tử theo index, có kiểm tra biên.
// Trả về false nếu một trong hai index nằm ngoài slice.
func SwapAt[T any](slice []T, i, j int) bool {
	if i < 0 || j < 0 || i >= len(slice) || j >= len(slice) {
		return false
	}
	slice[i], slice[j] = slice[j], slice[i]
	return true
}

// RemoveAt trả về slice mới đã loại bỏ phần tử tại index, có kiểm tra biên.
func RemoveAt[T any](slice []T, i int) ([]T, bool) {
	if i < 0 || i >= len(slice) {
		return slice, false
	}
	out := make([]T, 0, len(slice)-1)
	out = append(out, slice[:i]...)
	out = append(out, slice[i+1:]...)
	return out, true
}
