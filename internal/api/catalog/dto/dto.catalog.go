// Package catalogdto - input/output các endpoint domain catalog.
package catalogdto

// OrderLineInput là một dòng món client gửi lên khi set giỏ hàng.
// Giới hạn trên của Quantity kiểm tra ở service theo config, không hard-code
// trong tag.
type OrderLineInput struct {
	ItemID    string `json:"item_id" validate:"required"`
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// VariantInput đầu vào tạo variant mới cho một món.
type VariantInput struct {
	Name     string `json:"name" validate:"required"`
	PriceUSD string `json:"price_usd" validate:"required"`
}

// RestaurantCreateInput đầu vào tạo nhà hàng (chỉ admin).
type RestaurantCreateInput struct {
	Name  string `json:"name" validate:"required,no_xss"`
	Image string `json:"image"`
}

// RestaurantUpdateInput đầu vào đổi tên / ảnh nhà hàng. Field nil giữ nguyên.
type RestaurantUpdateInput struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// ItemCreateInput đầu vào tạo món mới trong một category.
type ItemCreateInput struct {
	Name          string         `json:"name" validate:"required,no_xss"`
	Desc          string         `json:"desc"`
	Active        bool           `json:"active"`
	CategoryIndex int            `json:"category_index" validate:"min=0"`
	Variants      []VariantInput `json:"variants" validate:"required,min=1,dive"`
}

// ItemUpdateInput đầu vào cập nhật món. Field nil giữ nguyên; Variants là
// danh sách variant mới được nối thêm vào variant sẵn có.
type ItemUpdateInput struct {
	Active   *bool          `json:"active"`
	Name     *string        `json:"name"`
	Desc     *string        `json:"desc"`
	Variants []VariantInput `json:"variants" validate:"omitempty,dive"`
}

// CategoryCreateInput đầu vào tạo category mới.
type CategoryCreateInput struct {
	Name   string `json:"name" validate:"required,no_xss"`
	Active bool   `json:"active"`
}

// CategoryUpdateInput đầu vào cập nhật category theo chỉ số: đổi tên, cờ
// active, danh sách món theo thứ tự mới, và tùy chọn đổi vị trí với category
// liền kề. MoveUp và MoveDown cùng bật thì không di chuyển.
type CategoryUpdateInput struct {
	Name     string   `json:"name" validate:"required,no_xss"`
	Active   bool     `json:"active"`
	Items    []string `json:"items" validate:"required"`
	MoveUp   bool     `json:"move_up"`
	MoveDown bool     `json:"move_down"`
}

// RosterAddInput đầu vào thêm worker/owner theo email.
type RosterAddInput struct {
	UserEmail string `json:"user_email" validate:"required,email"`
}

// MenuItemView là một món sau khi shape theo role: Active chỉ xuất hiện với
// staff, variant giữ nguyên thứ tự.
type MenuItemView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Desc     string        `json:"desc,omitempty"`
	Active   *bool         `json:"active,omitempty"`
	Variants []VariantView `json:"variants"`
}

// VariantView là variant trả về client.
type VariantView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PriceUSD string `json:"price_usd"`
}

// MenuCategoryView là một category sau khi shape theo role.
type MenuCategoryView struct {
	Name   string         `json:"name"`
	Active *bool          `json:"active,omitempty"`
	Items  []MenuItemView `json:"items"`
}
