// Package musicapitoolkit fornece um executor declarativo de requisições para
// APIs de plataformas de música, com cache de resultados em dois níveis e
// população assíncrona de mídia no armazenamento durável.
//
// Visão Geral:
// O serviço não conhece as APIs das plataformas em tempo de compilação: cada
// operação (search, toplist, playlist, parse) é descrita por um template
// remoto com URL, método HTTP, headers, parâmetros e um transform opcional,
// todos podendo carregar expressões {{...}} resolvidas contra as variáveis
// da requisição.
//
// Sub-Pacotes Principais:
//
// 1. expr:
//   - Resolução estrutural de templates com placeholders {{expressão}}.
//   - Avaliação restrita via CEL (sem execução de código arbitrário).
//
// 2. method:
//   - Fonte remota de templates por (plataforma, operação).
//   - Memoização com TTL e flush para hot reload.
//
// 3. executor:
//   - Montagem e disparo da requisição descrita pelo template.
//   - Transform fail-soft e reescrita de URLs de CDN para o proxy local.
//
// 4. cache / storage:
//   - Tier 1: cache de resultados em memória ou redis, com TTL.
//   - Tier 2: objetos duráveis (webdfs ou S3) compartilhados entre processos.
//
// 5. tracker:
//   - Single-flight para população de mídia: no máximo uma tarefa em voo
//     por recurso, callers concorrentes compartilham a conclusão.
//
// 6. service / transport:
//   - Orquestração das operações com leitura/escrita nos dois tiers.
//   - Front door HTTP (gorilla/mux) e adaptador Lambda compartilhando rotas.
//
// O design é focado na composabilidade e testabilidade, utilizando interfaces
// para abstrair colaboradores externos e garantir fácil mocking.
package musicapitoolkit
