// Package mswrite decodes Microsoft Write 3.0 and 3.1 documents.
package mswrite

// Write 3.x 파일 포맷 상수
// 모든 구조는 128바이트 페이지 단위로 저장된다

const (
	PageSize = 128

	IdentWrite30 uint16 = 0xBE31
	IdentWrite31 uint16 = 0xBE32
	ToolWord     uint16 = 0xAB00

	// 헤더 필드 오프셋
	offIdent  = 0
	offDty    = 2
	offTool   = 4
	offFcMac  = 14
	offPnPara = 18
	offPnFntb = 20
	offPnSep  = 22
	offPnSetb = 24
	offPnPgtb = 26
	offPnFfnt = 28
	offPnMac  = 96

	// FKP: fcFirst(4) + FOD 배열 + ... + cfod(1, 마지막 바이트)
	fodSize   = 6
	maxFOD    = (PageSize - 4 - 1) / fodSize
	bfpropNil = 0xFFFF

	chpSize = 6
	papSize = 22 + maxTabs*4
	sepSize = 22
	maxTabs = 14

	pgdSize = 6

	// 그림 문단 헤더
	pictureHeaderSize = 40
	mmBitmap          = 0xE3
)

// entry names of the synthetic index
const (
	EntryText    = "TEXT"
	EntryChar    = "CHP "
	EntryPara    = "PAP "
	EntryFonts   = "FFNT"
	EntrySection = "SEP "
	EntrySetb    = "SETB"
	EntryPages   = "PGTB"
)

// CHP 비트
const (
	chpBold      = 0x01
	chpItalic    = 0x02
	chpUnderline = 0x01
	chpSpecial   = 0x40
)

// rhc 비트 (running head code)
const (
	rhcFooter    = 0x01
	rhcOddEven   = 0x06
	rhcFirstPage = 0x08
	rhcGraphics  = 0x10
)
