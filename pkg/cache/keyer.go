package cache

import "strings"

// BuildKey monta a chave determinística de cache: nome da operação seguido de
// todos os parâmetros que distinguem o resultado, em ordem fixa. Duas
// requisições semanticamente idênticas sempre caem na mesma chave.
func BuildKey(operation string, parts ...string) string {
	if len(parts) == 0 {
		return operation
	}
	return operation + "-" + strings.Join(parts, "-")
}
