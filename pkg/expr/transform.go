package expr

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// EvalTransform aplica a transformação declarada no método sobre a resposta já
// decodificada. A expressão roda num ambiente CEL restrito onde apenas a
// variável `response` está visível — o template remoto nunca executa código
// arbitrário, só expressões sobre o payload.
func EvalTransform(src string, response interface{}) (interface{}, error) {
	env, err := cel.NewEnv(
		cel.Variable("response", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação do transform: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro programa CEL: %w", err)
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"response": response,
	})
	if err != nil {
		return nil, fmt.Errorf("erro execução do transform: %w", err)
	}

	return out.Value(), nil
}
