package transcript

type Level string

const (
	LevelShort   Level = "short"
	LevelAlmost  Level = "almost"
	LevelEnough  Level = "enough"
	LevelTooLong Level = "too_long"
)

// Notices shown to the participant.
const (
	HintShort        = "チャットがまだ十分な長さに達していません。チャットをまだ続けて下さい。"
	HintAlmost       = "もう少しでチャットが規定の長さに達します。あと少しチャットを続けて下さい。"
	HintEnough       = "チャットが規定の長さになりました。数回のやり取りで自然な形で対話を終了させて下さい。"
	HintTooLong      = "チャットが長過ぎるようです。チャットを終了して下さい。"
	NoticeLongEnough = "対話が十分な長さになりました。数回のやり取りで自然な形で対話を終了させて下さい。"
	NoticeAwaitReply = "相手の返信を待ってからメッセージを送信してください。"
	ConfirmStop      = "チャットを終了しますか？"
)

// almostMargin is how many messages before high the dialog is deemed almost long enough.
const almostMargin = 5

// Progress describes how far the dialog is from the expected length.
type Progress struct {
	Level Level
	Color string
	// Width of the progress bar, in percent of the available space.
	Width float64
	Hint  string
}

// Evaluate computes the progress from the message counts of both sides.
func Evaluate(self, other, low, high int) Progress {
	var p Progress
	switch {
	case self < low && other < low:
		p = Progress{Level: LevelShort, Color: "red", Hint: HintShort}
	case self < high-almostMargin && other < high-almostMargin:
		p = Progress{Level: LevelAlmost, Color: "yellow", Hint: HintAlmost}
	case self < high && other < high:
		p = Progress{Level: LevelEnough, Color: "green", Hint: HintEnough}
	default:
		p = Progress{Level: LevelTooLong, Color: "red", Hint: HintTooLong}
	}
	if high > 0 {
		p.Width = float64(self+other) / float64(2*high) * 90
	}
	return p
}

// TooShort reports whether either side is still below low.
func TooShort(self, other, low int) bool {
	return self < low || other < low
}

// LongEnough reports whether both sides reached high.
func LongEnough(self, other, high int) bool {
	return self >= high && other >= high
}
