package service

import (
	"github.com/google/uuid"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

const maxNotices = 5

// Notice: toast yang ditampilkan browser sampai di-dismiss.
type Notice struct {
	ID      string      `json:"id"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

type noticeList []Notice

func (l *noticeList) push(level NoticeLevel, msg string) {
	*l = append(*l, Notice{ID: uuid.NewString(), Level: level, Message: msg})
	if len(*l) > maxNotices {
		*l = append(noticeList(nil), (*l)[len(*l)-maxNotices:]...)
	}
}

func (l *noticeList) dismiss(id string) bool {
	for i, n := range *l {
		if n.ID == id {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

func (l noticeList) snapshot() []Notice {
	return append([]Notice{}, l...)
}
