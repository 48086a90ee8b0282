//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package str

// ServerSession - the per-user preferences; the active learning state lives in its own vault
type ServerSession struct {
	ID         string
	ActiveCorp []string
	BatchSize  int
	Categories []string
	Model      string
	Space      string
	TopN       int
	Topics     int
}
