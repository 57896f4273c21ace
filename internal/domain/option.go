package domain

// Option es un botón seleccionable: Label se muestra, Data vuelve en el callback.
type Option struct {
	Label string
	Data  string
}

// OptionsFrom crea opciones donde label y payload coinciden.
func OptionsFrom(values []string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Label: v, Data: v})
	}
	return opts
}
