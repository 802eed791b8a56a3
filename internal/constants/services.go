package constants

// Services is the salon's service catalog. The first entry is the form default.
var Services = []string{
	"Corte de Cabelo",
	"Coloração",
	"Hidratação Profunda",
	"Manicure e Pedicure",
	"Maquiagem",
	"Consultoria de Imagem",
}

// DefaultService returns the preselected catalog entry.
func DefaultService() string {
	return Services[0]
}
