package repository

import "errors"

var ErrNotFound = errors.New("задача не найдена в хранилище")
var ErrNoOwner = errors.New("владелец не задан")
