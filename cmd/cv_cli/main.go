package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cv-portfolio/internal/config"
	"cv-portfolio/internal/domain"
	"cv-portfolio/internal/llm"
	"cv-portfolio/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	registry := llm.NewModelRegistry(llm.TransportKind(cfg.LLMTransport), cfg.LLMDefaultModel, cfg.TaskModelOverrides(), logger)
	if err := registry.CheckTransport(); err != nil {
		log.Fatalf("llm model config: %v", err)
	}
	transport, err := llm.NewTransport(ctx, llm.TransportOptions{
		Kind:    llm.TransportKind(cfg.LLMTransport),
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("llm transport: %v", err)
	}
	gateway := llm.NewGateway(registry, transport, llm.GatewayConfig{
		MaxRetries: cfg.LLMMaxRetries,
		RetryDelay: cfg.LLMRetryDelay,
	}, logger)

	extractionSvc := service.NewExtractionService(gateway, registry.GetRecommendedModel(llm.TaskCVExtraction), logger)
	portfolioSvc := service.NewPortfolioService(gateway, registry.GetRecommendedModel(llm.TaskPortfolioGeneration), logger)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	var current *domain.CVAnalysisResult
	if len(os.Args) > 1 {
		current = analyzeFile(ctx, extractionSvc, os.Args[1])
	}

	for {
		fmt.Println("\n===== CV Portfolio CLI =====")
		if current != nil {
			fmt.Printf("CV cargado: %s (confianza %.0f%%)\n", current.PersonalInfo.Name, current.AnalysisConfidence*100)
		}
		fmt.Println("[1] Analizar archivo de CV")
		fmt.Println("[2] Ver resumen de skills")
		fmt.Println("[3] Generar portfolio")
		fmt.Println("[4] Listar modelos")
		fmt.Println("[5] Emitir token de acceso")
		fmt.Println("[6] Salir")
		fmt.Print("Opcion: ")

		choice := readLine(reader)
		switch choice {
		case "1":
			fmt.Print("Ruta del archivo: ")
			if res := analyzeFile(ctx, extractionSvc, readLine(reader)); res != nil {
				current = res
			}
		case "2":
			if current == nil {
				fmt.Println("Primero analiza un CV.")
				continue
			}
			printJSON(service.ExtractSkillsSummary(current))
		case "3":
			if current == nil {
				fmt.Println("Primero analiza un CV.")
				continue
			}
			generatePortfolio(ctx, reader, portfolioSvc, current)
		case "4":
			for _, m := range registry.ListModels() {
				fmt.Printf("- %s (%s, max %d tokens)\n", m.ID, m.Family, m.MaxTokens)
			}
		case "5":
			fmt.Print("Client ID: ")
			tok, err := jwtSvc.GenerateAccessToken(readLine(reader))
			if err != nil {
				fmt.Printf("No se pudo emitir el token (JWT_SECRET configurado?): %v\n", err)
				continue
			}
			printJSON(tok)
		case "6", "q", "Q":
			return
		default:
			fmt.Println("Seleccion invalida.")
		}
	}
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func analyzeFile(ctx context.Context, svc *service.ExtractionService, path string) *domain.CVAnalysisResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("No se pudo leer %q: %v\n", path, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	fmt.Println("Analizando...")
	result, err := svc.Analyze(ctx, string(raw), service.AnalyzeOptions{})
	if err != nil {
		printError(err)
		return nil
	}
	printJSON(result)
	return result
}

func generatePortfolio(ctx context.Context, reader *bufio.Reader, svc *service.PortfolioService, cv *domain.CVAnalysisResult) {
	opts := domain.DefaultPortfolioOptions()

	fmt.Printf("Estilo [%s]: ", opts.Style)
	if s := readLine(reader); s != "" {
		opts.Style = domain.ContentStyle(s)
	}
	fmt.Print("Secciones separadas por coma (vacio = por defecto): ")
	if s := readLine(reader); s != "" {
		opts.IncludeSections = nil
		for _, name := range strings.Split(s, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.IncludeSections = append(opts.IncludeSections, domain.SectionName(name))
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	fmt.Println("Generando portfolio...")
	content, err := svc.Generate(ctx, cv, opts)
	if err != nil {
		printError(err)
		return
	}
	printJSON(content)

	fmt.Println("\nReporte por seccion:")
	for _, r := range content.GenerationReport {
		line := fmt.Sprintf("- %s: %s", r.Section, r.Status)
		if r.Error != "" {
			line += " (" + r.Error + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("Calidad: %.1f/10\n", content.ContentQualityScore*10)
}

func printError(err error) {
	var invErr *llm.ModelInvocationError
	var parseErr *llm.ResponseParsingError
	switch {
	case errors.As(err, &parseErr):
		fmt.Printf("El modelo %s devolvio una respuesta invalida: %s\n", parseErr.ModelID, parseErr.Reason)
	case errors.As(err, &invErr):
		fmt.Printf("Fallo la llamada al modelo %s tras %d intentos (%s): %v\n", invErr.ModelID, len(invErr.Attempts), invErr.LastClass(), invErr.Err)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error serializando: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
