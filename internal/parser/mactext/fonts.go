package mactext

// 시스템 글꼴 패밀리 번호 (Inside Macintosh: Text)
var familyNames = map[int]string{
	0:  "Chicago",
	1:  "Geneva", // application font
	2:  "New York",
	3:  "Geneva",
	4:  "Monaco",
	5:  "Venice",
	6:  "London",
	7:  "Athens",
	8:  "San Francisco",
	9:  "Toronto",
	11: "Cairo",
	12: "Los Angeles",
	13: "Zapf Dingbats",
	14: "Bookman",
	16: "Palatino",
	18: "Zapf Chancery",
	20: "Times",
	21: "Helvetica",
	22: "Courier",
	23: "Symbol",
	24: "Mobile",
	33: "Avant Garde",
	34: "New Century Schoolbook",
}

// QuickDraw style bits
const (
	faceBold      = 0x01
	faceItalic    = 0x02
	faceUnderline = 0x04
	faceOutline   = 0x08
	faceShadow    = 0x10
)
