package repository

import "errors"

var ErrNotFound = errors.New("не найдено")
var ErrTagExists = errors.New("тег с таким именем уже существует")
