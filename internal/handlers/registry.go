package handlers

// AppHandlers groups every handler the router registers.
type AppHandlers struct {
	ApplicationHandler *ApplicationHandler
	AdminHandler       *AdminHandler
}
