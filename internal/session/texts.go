package session

// 确认与提示文案。
const (
	confirmDelete      = "Bạn có chắc muốn xóa cuộc trò chuyện này?"
	confirmClearChat   = "Bạn có chắc muốn xóa cuộc trò chuyện hiện tại?"
	confirmDeleteAll   = "Bạn có chắc muốn xóa tất cả lịch sử trò chuyện? Hành động này không thể hoàn tác."
	noticeDeleteFailed = "Có lỗi xảy ra khi xóa cuộc trò chuyện"
	noticeLoadFailed   = "Không thể tải cuộc trò chuyện. Vui lòng thử lại sau."
)

// suggestions 是快捷问题，按主题键选择。
var suggestions = map[string]string{
	"acne":      "Cách trị mụn trứng cá hiệu quả",
	"dry-skin":  "Chăm sóc da khô đúng cách",
	"allergy":   "Xử lý dị ứng mỹ phẩm",
	"psoriasis": "Điều trị bệnh vảy nến",
	"sunscreen": "Sử dụng kem chống nắng hiệu quả",
}

// SuggestionTopics 返回可用的快捷问题主题键。
func SuggestionTopics() []string {
	return []string{"acne", "dry-skin", "allergy", "psoriasis", "sunscreen"}
}

// SuggestionText 返回主题对应的问题；未知主题原样返回。
func SuggestionText(topic string) string {
	if text, ok := suggestions[topic]; ok {
		return text
	}
	return topic
}
