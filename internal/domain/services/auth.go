package services

// Navigator moves the console to another route
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }
