package inmemdb

import (
	"sync"

	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

type (
	DB struct {
		share   *shareTable
		student *studentTable
		setting *settingTable
	}

	shareTable struct {
		sync.RWMutex
		table map[string]*share.Share
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	settingTable struct {
		sync.RWMutex
		table map[string]string
	}
)

func Open() *DB {
	return &DB{
		share:   &shareTable{table: make(map[string]*share.Share)},
		student: &studentTable{table: make(map[string]*student.Student)},
		setting: &settingTable{table: make(map[string]string)},
	}
}
