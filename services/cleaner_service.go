package services

import (
	"regexp"
	"strings"
)

// PreCleanText xử lý thô: loại mục lục, số trang, code, khoảng trắng
func PreCleanText(text string) string {
	cleaned := text

	// Xoá các dòng chứa "Mục lục" hoặc "Table of Contents"
	reTOC := regexp.MustCompile(`(?im)^(.*mục lục.*|.*table of contents.*)$`)
	cleaned = reTOC.ReplaceAllString(cleaned, "")

	// Xoá các dòng chứa "Trang X" hoặc "Page X"
	rePageNumber := regexp.MustCompile(`(?im)^.*(trang|page)[^\d]*\d+.*$`)
	cleaned = rePageNumber.ReplaceAllString(cleaned, "")

	// Xoá dòng chỉ có số, ký tự đặc biệt hoặc khoảng trắng
	reSpecialLines := regexp.MustCompile(`(?m)^[\s\W\d]*$`)
	cleaned = reSpecialLines.ReplaceAllString(cleaned, "")

	// Xoá dòng có chứa code hoặc từ khoá lập trình
	reCode := regexp.MustCompile(`(?im)^.*(const |function |class |<[^>]+>).*?$`)
	cleaned = reCode.ReplaceAllString(cleaned, "")

	// Xoá nhiều dòng trống liên tiếp
	reMultiNewLine := regexp.MustCompile(`\n{2,}`)
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n")

	return strings.TrimSpace(cleaned)
}

// CleanWithGemini sử dụng Gemini để làm sạch sâu, chuẩn hoá văn bản
func CleanWithGemini(text string) (string, error) {
	prompt := `Bạn là công cụ xử lý văn bản trích xuất từ tài liệu học tập.
	Hãy xử lý văn bản sau với yêu cầu:
	- Xoá phần mục lục, các dòng chứa số trang, tiêu đề lặp lại
	- Xoá code, ví dụ mã lệnh, hoặc các ký hiệu kỹ thuật
	- Làm gọn văn bản: không có dòng trống thừa, không có ký tự lạ
	- Ngắt đoạn hợp lý, dễ đọc, phù hợp để sinh tài liệu ôn tập
	- Giữ nguyên nội dung, không thêm bớt, không giải thích
	- Không in đậm, in nghiêng, không sử dụng markdown, chỉ trả về văn bản thuần tuý
	Văn bản cần làm sạch:`

	fullPrompt := prompt + "\n\n" + text

	return GeminiGenerateText(fullPrompt)
}

// SummaryText tóm tắt nội dung thành một đoạn văn ngắn gọn
func SummaryText(text string) (string, error) {
	prompt := `Bạn là công cụ tóm tắt văn bản, hãy giúp tôi tóm tắt nội dung thành một đoạn văn một cách rõ ràng và ngắn gọn
	Yêu cầu:
	1. Không lược bỏ nội dung chính, không tự ý thêm thông tin không có trong văn bản, đảm bảo đủ nội dung quan trọng
	2. Ngôn ngữ tự nhiên, gần gũi, không quá khô khan
	3. Có thể thêm câu chuyển đoạn ngắn để mạch lạc hơn
	4. Không sử dụng từ ngữ chuyên môn quá khó hiểu
	5. KHÔNG sử dụng markdown, KHÔNG in đậm, KHÔNG in nghiêng, chỉ trả về văn bản thuần tuý, KHÔNG thêm ký tự đặc biệt
	6. Không bình luận, không giải thích, chỉ trả về nội dung tóm tắt.
	Đoạn văn bản cần viết lại:`

	fullPrompt := prompt + "\n\n" + text

	return GeminiGenerateText(fullPrompt)
}

// BulletPointsText rút các ý chính thành danh sách gạch đầu dòng
func BulletPointsText(text string) (string, error) {
	prompt := `Bạn là công cụ rút ý chính từ văn bản học tập.
	Hãy liệt kê các ý chính của văn bản sau, mỗi ý một dòng.
	Yêu cầu:
	1. Mỗi dòng là một ý trọn vẹn, ngắn gọn, tối đa 25 từ
	2. Từ 5 đến 12 ý, theo đúng thứ tự xuất hiện trong văn bản
	3. Không thêm thông tin không có trong văn bản
	4. KHÔNG sử dụng markdown, KHÔNG đánh số, KHÔNG gạch đầu dòng, chỉ xuống dòng giữa các ý
	5. Không bình luận, không giải thích.
	Văn bản:`

	fullPrompt := prompt + "\n\n" + text

	return GeminiGenerateText(fullPrompt)
}

// CleanTextPipeline là pipeline chính: Regex + Gemini
func CleanTextPipeline(rawText string) (string, error) {
	preCleaned := PreCleanText(rawText)
	finalCleaned, err := CleanWithGemini(preCleaned)
	if err != nil {
		return "", err
	}

	return finalCleaned, nil
}
