package config

// DefaultWelcomeMessage 是新对话开始时直接渲染的欢迎语（不经过发送流程，也不持久化）。
const DefaultWelcomeMessage = `👋 **Xin chào! Tôi là chatbot tư vấn da liễu thông minh**

Tôi có thể giúp bạn với các vấn đề về:

🎯 **Phân tích hình ảnh** - Gửi ảnh để nhận chẩn đoán sơ bộ
💊 **Tư vấn điều trị** - Mụn, nám, viêm da, dị ứng
🌿 **Chăm sóc da** - Routine phù hợp với loại da
⚠️ **Xử lý khẩn cấp** - Dị ứng, kích ứng da
📋 **Kiến thức chuyên môn** - Dựa trên tài liệu y khoa

**Bạn có thể:**
- Gửi hình ảnh da để phân tích AI
- Mô tả triệu chứng để được tư vấn
- Hỏi về bất kỳ vấn đề da liễu nào

Hãy bắt đầu bằng cách gửi tin nhắn hoặc hình ảnh!`

// DefaultFallbackMessage 在发送失败时以助手身份渲染，从不展示原始错误。
const DefaultFallbackMessage = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau."
