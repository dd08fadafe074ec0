package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/rs/zerolog/log"
)

// Regex que identifica placeholders {{...}} dentro de strings de template (non-greedy,
// pode haver várias ocorrências na mesma string).
var placeholderRegex = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Resolver avalia expressões CEL embutidas em templates de método contra o
// conjunto de variáveis da requisição. O ambiente CEL é restrito: apenas os
// nomes presentes nos bindings ficam visíveis, nada de execução arbitrária.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// BuildBindings converte os parâmetros da requisição no contexto de avaliação.
// Valores totalmente numéricos viram números (para a aritmética do CEL funcionar),
// o resto permanece string.
func BuildBindings(vars map[string]string) map[string]interface{} {
	bindings := make(map[string]interface{}, len(vars))
	for name, raw := range vars {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			bindings[name] = i
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
			bindings[name] = f
		} else {
			bindings[name] = raw
		}
	}
	return bindings
}

// Resolve percorre o template estruturalmente (mapas, listas, strings) e devolve
// uma cópia com todos os placeholders substituídos. Escalares passam intactos.
// O template original nunca é mutado.
func (r *Resolver) Resolve(template interface{}, bindings map[string]interface{}) interface{} {
	switch v := template.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			result[k] = r.Resolve(val, bindings)
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			result[i] = r.Resolve(val, bindings)
		}
		return result

	case string:
		return r.resolveString(v, bindings)

	default:
		return v
	}
}

// ResolveString resolve os placeholders de uma única string de template.
func (r *Resolver) ResolveString(template string, bindings map[string]interface{}) string {
	return r.resolveString(template, bindings)
}

func (r *Resolver) resolveString(template string, bindings map[string]interface{}) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		inner := strings.TrimSpace(match[2 : len(match)-2])
		val, err := evalExpression(inner, bindings)
		if err != nil {
			// Tolerante a falha parcial: substitui por "0" e segue com o resto
			// do template em vez de abortar a resolução inteira.
			log.Warn().Err(err).Str("expr", inner).Msg("falha ao avaliar placeholder, usando default")
			return "0"
		}
		return FormatValue(val)
	})
}

// evalExpression compila e executa uma expressão CEL num ambiente onde apenas
// os nomes dos bindings existem como variáveis dinâmicas.
func evalExpression(expression string, bindings map[string]interface{}) (interface{}, error) {
	opts := make([]cel.EnvOption, 0, len(bindings))
	for name := range bindings {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação CEL '%s': %w", expression, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro programa CEL: %w", err)
	}

	out, _, err := prg.Eval(bindings)
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}

	return out.Value(), nil
}

// FormatValue converte o resultado do CEL para a forma string usada no template.
func FormatValue(v interface{}) string {
	switch n := v.(type) {
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}
