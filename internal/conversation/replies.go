package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Reply texts mirror the Zalo OA storefront wording. Keyword literals the
// heuristics match on live in resolver.go; everything the bot says lives here.
const (
	replyGreeting = "Xin chào! Chào mừng bạn đến với VNG Glass.\n\n" +
		"📝 Để đặt hàng: Gõ \"Đặt hàng\"\n" +
		"👨‍💼 Liên hệ nhân viên: Gõ \"Nhân viên\""

	replyAskPhone = "📱 Bạn đã bắt đầu quá trình đặt hàng.\n" +
		"Vui lòng cung cấp số điện thoại của bạn (10-11 chữ số):"

	replyInvalidPhone = "❌ Số điện thoại không hợp lệ.\n" +
		"Vui lòng nhập số điện thoại gồm 10-11 chữ số (VD: 0901234567):"

	replyCustomerNotFound = "❌ Không tìm thấy khách hàng với số điện thoại này.\n" +
		"Vui lòng kiểm tra lại số điện thoại hoặc gõ \"Nhân viên\" để được hỗ trợ đăng ký."

	replyProductFormat = "Vui lòng nhập sản phẩm theo định dạng:\n" +
		"Mã sản phẩm + Loại sản phẩm + Kích thước + Số lượng\n" +
		"VD: GL001 Kính cường lực 1000x2000mm 2"

	replyInvalidProduct = "❌ Thông tin sản phẩm không hợp lệ.\n\n" + replyProductFormat

	replyAskFinish = "🎯 Nếu đã xong hãy nhắn \"Kết thúc\" để xem bản xác nhận đơn hàng."

	replyNoProducts = "❌ Đơn hàng chưa có sản phẩm nào.\n" +
		"Vui lòng thêm ít nhất một sản phẩm trước khi kết thúc.\n\n" + replyProductFormat

	replyAskConfirm = "✅ Nhắn \"Xác nhận\" để hoàn tất đơn hàng, " +
		"nhập thêm sản phẩm để chỉnh sửa, hoặc \"Hủy\" để hủy đơn."

	replyCancelled = "Đơn hàng đã được hủy thành công.\n" +
		"Cảm ơn bạn đã quan tâm đến sản phẩm của chúng tôi!"

	replyStaffContact = "👨‍💼 Liên hệ nhân viên hỗ trợ:\n\n" +
		"📞 Hotline: 1900-xxxx\n" +
		"📧 Email: support@vngglass.com\n" +
		"💬 Zalo: @vngglass_support\n\n" +
		"Nhân viên sẽ phản hồi trong vòng 15 phút!\n" +
		"Gõ \"Quay lại\" khi bạn muốn tiếp tục trò chuyện với trợ lý."

	replyStaffEnded = "Bạn đã quay lại trợ lý đặt hàng.\n\n" + replyGreeting

	replyEscalated = "Xin lỗi, tôi chưa hiểu được yêu cầu của bạn sau nhiều lần thử.\n" +
		"Tôi sẽ chuyển bạn tới nhân viên hỗ trợ.\n\n"

	replyUnknown = "Xin lỗi, tôi không hiểu ý bạn.\n\n" +
		"📝 Để đặt hàng: Gõ \"Đặt hàng\"\n" +
		"👨‍💼 Liên hệ nhân viên: Gõ \"Nhân viên\""

	// ReplyUnsupportedEvent answers any non-text webhook event.
	ReplyUnsupportedEvent = "Xin lỗi, tôi chỉ có thể xử lý tin nhắn văn bản. " +
		"Vui lòng gửi tin nhắn bằng chữ hoặc liên hệ nhân viên hỗ trợ.\n\n" +
		"📞 Hotline: 1900-xxxx\n📧 Email: support@vngglass.com"

	replySystemError = "Xin lỗi, có lỗi xảy ra. Vui lòng thử lại sau."
)

func replyCustomerFound(name string) string {
	return fmt.Sprintf("✅ Xin chào %s! Chúng tôi đã tìm thấy thông tin của bạn.\n\n%s", name, replyProductFormat)
}

func replyLinesAdded(added []LineDraft, rejected []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Đã thêm %d sản phẩm vào đơn hàng:\n", len(added))
	for i, d := range added {
		fmt.Fprintf(&b, "%d. %s - %s - %s - SL: %d\n", i+1, d.ProductCode, d.ProductType, formatDimensions(d), d.Quantity)
	}
	if len(rejected) > 0 {
		fmt.Fprintf(&b, "\n❌ %d mục không hợp lệ:\n", len(rejected))
		for i, r := range rejected {
			fmt.Fprintf(&b, "%d. \"%s\"\n", i+1, r)
		}
		b.WriteString("💡 Vui lòng sửa lại các mục không hợp lệ hoặc bỏ qua chúng.\n")
	}
	b.WriteString("\n" + replyAskFinish)
	return b.String()
}

func replySummary(sess *Session) string {
	var b strings.Builder
	b.WriteString("📋 CHI TIẾT ĐƠN HÀNG:\n\n")
	for _, d := range sess.PartialOrder {
		fmt.Fprintf(&b, "• %s - %s - %s - SL: %d\n", d.ProductCode, d.ProductType, formatDimensions(d), d.Quantity)
	}
	fmt.Fprintf(&b, "\n📞 Số điện thoại: %s\n", sess.CustomerPhone)
	if sess.CustomerName != "" {
		fmt.Fprintf(&b, "👤 Khách hàng: %s\n", sess.CustomerName)
	}
	b.WriteString("\n" + replyAskConfirm)
	return b.String()
}

func replyCompleted(summary *OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Đơn hàng %s đã được xác nhận thành công!\n\n", summary.OrderCode)
	for _, d := range summary.Lines {
		fmt.Fprintf(&b, "• %s - %s - %s - SL: %d\n", d.ProductCode, d.ProductType, formatDimensions(d), d.Quantity)
		fmt.Fprintf(&b, "  💰 Đơn giá: %s VNĐ - Thành tiền: %s VNĐ\n", formatVND(d.UnitPrice), formatVND(d.Total))
	}
	fmt.Fprintf(&b, "\n💰 TỔNG TIỀN: %s VNĐ\n\n", formatVND(summary.Total))
	b.WriteString("📞 Chúng tôi sẽ liên hệ với bạn trong vòng 24 giờ để xác nhận chi tiết.\n")
	b.WriteString("Cảm ơn bạn đã tin tưởng VNG Glass!")
	return b.String()
}

func replyFinalizeFailed(err error) string {
	if lineErr, ok := AsLineError(err); ok {
		return fmt.Sprintf("❌ Không thể tạo đơn hàng: sản phẩm \"%s %s %s\" %s.\n"+
			"Vui lòng sửa lại sản phẩm này hoặc gõ \"Nhân viên\" để được hỗ trợ.",
			lineErr.Draft.ProductCode, lineErr.Draft.ProductType, formatDimensions(lineErr.Draft), lineErr.Reason)
	}
	return "❌ Có lỗi xảy ra khi tạo đơn hàng. Vui lòng thử lại sau."
}

// contextHelp is the reply for an unknown intent, specific to the state the
// conversation is stuck in.
func contextHelp(state State) string {
	switch state {
	case StateWaitingForPhone:
		return replyInvalidPhone
	case StateWaitingForProductInfo:
		return replyInvalidProduct
	case StateConfirming:
		return replyAskConfirm
	case StateContactingStaff:
		return replyStaffContact
	default:
		return replyUnknown
	}
}

func formatDimensions(d LineDraft) string {
	if d.Thickness > 0 {
		return fmt.Sprintf("%s*%s*%smm", trimFloat(d.Width), trimFloat(d.Height), trimFloat(d.Thickness))
	}
	return fmt.Sprintf("%sx%smm", trimFloat(d.Width), trimFloat(d.Height))
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// formatVND renders an amount with thousands separators, no decimals.
func formatVND(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
