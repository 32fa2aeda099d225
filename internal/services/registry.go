package services

// ServiceContainer holds the wired services handed to the handlers.
type ServiceContainer struct {
	ApplicationService *ApplicationService
}
