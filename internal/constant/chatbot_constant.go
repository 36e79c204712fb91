package constant

// Static user-facing messages. The pipeline's pivot language is Indonesian;
// translation happens outside the pipeline.
const (
	MessageGenericProcessingError = "Maaf, terjadi kesalahan saat memproses pertanyaan Anda. Silakan coba lagi."
	MessageProviderUnavailable    = "Maaf, layanan AI sedang tidak tersedia. Silakan coba beberapa saat lagi."
	MessageAnswerFailed           = "Maaf, terjadi kesalahan saat menyusun jawaban."
	MessageNoContext              = "Maaf, tidak ada konteks yang tersedia untuk menjawab pertanyaan Anda."
	MessageEmptyQuestion          = "Silakan tuliskan pertanyaan Anda."
	MessageTabularFailed          = "Maaf, saya tidak dapat membaca data tabel tersebut."

	MessageNoInfoCompany     = "Maaf, saya tidak menemukan informasi tersebut di basis pengetahuan perusahaan."
	MessageNoInfoGeneral     = "Maaf, saya tidak memiliki informasi yang cukup untuk menjawab pertanyaan tersebut."
	MessageNoInfoBrowse      = "Maaf, saya tidak menemukan informasi yang relevan di web untuk pertanyaan tersebut."
	MessageNoInfoAttachments = "Maaf, saya tidak menemukan jawabannya di dokumen yang Anda unggah."
	MessageNoSourceSelected  = "Silakan aktifkan setidaknya satu sumber jawaban (perusahaan, umum, atau web) lalu ajukan kembali pertanyaan Anda."

	MessageSmallTalkGreeting    = "Halo! Ada yang bisa saya bantu hari ini?"
	MessageSmallTalkThanks      = "Sama-sama! Senang bisa membantu."
	MessageSmallTalkBye         = "Sampai jumpa! Jangan ragu untuk bertanya lagi."
	MessageSmallTalkAffirmation = "Baik! Ada hal lain yang ingin Anda tanyakan?"

	MessageDeclinedClarification = "Mohon perjelas pertanyaan Anda. Informasi apa yang sebenarnya ingin Anda ketahui?"
	MessageDefaultClarification  = "Mohon perjelas pertanyaan Anda agar saya dapat mencari jawaban yang tepat."
)

// FallbackMessages lists every static message that must never be accepted as an answer
var FallbackMessages = []string{
	MessageGenericProcessingError,
	MessageProviderUnavailable,
	MessageAnswerFailed,
	MessageNoContext,
	MessageEmptyQuestion,
	MessageTabularFailed,
	MessageNoInfoCompany,
	MessageNoInfoGeneral,
	MessageNoInfoBrowse,
	MessageNoInfoAttachments,
	MessageNoSourceSelected,
}

// Marker phrases embedded in composed prompts. The two families are disjoint:
// no confirmation marker is a substring of a clarification prompt and vice versa.
var (
	ConfirmationMarkers = []string{
		`balas "Benar"`,
		`reply "Yes"`,
		"Apakah yang Anda maksud:",
	}
	ClarificationMarkers = []string{
		"Mohon perjelas",
		"Please clarify",
		"pilih salah satu opsi",
	}
)

// ConfirmationTemplate takes the proposed question
const ConfirmationTemplate = `Saya belum menemukan jawaban yang pasti. Apakah yang Anda maksud: "%s"?

Jika ya, balas "Benar". Jika bukan, balas "Tidak" lalu jelaskan pertanyaan Anda.`

// ClarificationOptionsFooter follows a lettered option list
const ClarificationOptionsFooter = "Silakan pilih salah satu opsi dengan membalas hurufnya, atau tuliskan jawaban Anda sendiri."
