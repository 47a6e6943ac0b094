package codegen

import (
	"fmt"
	"io"
	"strings"

	"zamuza/internal/ir"
)

// Options configures the emitted translation unit.
type Options struct {
	// StackSize becomes the compile-time MAX_STACK_SIZE.
	StackSize int
	// Trace defines ZZ_TRACE: the runtime logs every reduction to stderr.
	Trace bool
	// Timing defines ZZ_TIMING: the runtime reports reduction statistics.
	Timing bool
}

// DefaultStackSize mirrors the VM default.
const DefaultStackSize = 1024

// EmitC writes a self-contained C program for the IR: runtime fragment,
// one function per rule, the dispatch table, one constructor per net, and
// an entry point that builds the Main net, reduces, and prints the
// interface outputs.
func EmitC(w io.Writer, program *ir.Program, opts Options) error {
	e := &emitter{w: w}

	stackSize := opts.StackSize
	if stackSize < 0 {
		stackSize = DefaultStackSize
	}

	e.prelude(stackSize, opts)
	e.global(program.Agents)
	e.printf("%s", cRuntime)

	for _, rule := range program.Rules {
		e.rule(rule)
	}
	e.ruleMap(program.RuleMap)

	for _, function := range program.Functions {
		e.function(function)
	}
	e.main(program)

	return e.err
}

// emitter wraps a writer and keeps the first write error.
type emitter struct {
	w   io.Writer
	err error
}

func (e *emitter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *emitter) prelude(stackSize int, opts Options) {
	e.printf("#include <stdio.h>\n")
	e.printf("#include <stdlib.h>\n")
	e.printf("#include <time.h>\n\n")
	e.printf("#define MAX_STACK_SIZE %d\n", stackSize)
	if opts.Trace {
		e.printf("#define ZZ_TRACE\n")
	}
	if opts.Timing {
		e.printf("#define ZZ_TIMING\n")
	}
	e.printf("%s", cDeclarations)
}

func (e *emitter) global(agents []ir.AgentMeta) {
	names := make([]string, len(agents))
	arities := make([]string, len(agents))
	for i, agent := range agents {
		names[i] = fmt.Sprintf("%q", agent.Name)
		arities[i] = fmt.Sprintf("%d", agent.Arity)
	}

	e.printf("\n#define AGENT_COUNT %d\n", len(agents))
	e.printf("char* AGENTS[] = { %s };\n", strings.Join(names, ", "))
	e.printf("size_t ARITY[] = { %s };\n", strings.Join(arities, ", "))
	e.printf("size_t NAME_COUNTER = AGENT_COUNT;\n")
}

func (e *emitter) rule(rule *ir.Rule) {
	e.printf("\n// %s\n", rule.Description)
	e.printf("void rule_%d(size_t* left, size_t* right) {\n", rule.Index)
	for _, init := range rule.Initializers {
		e.initializer(init)
	}
	for _, inst := range rule.Instructions {
		e.instruction(inst)
	}
	e.printf("}\n")
}

func (e *emitter) initializer(init ir.Initializer) {
	switch init := init.(type) {
	case ir.InitName:
		e.printf("    size_t* x%d = new_name();\n", init.Index)
	case ir.InitAgent:
		e.printf("    size_t* a%d = new_agent(%d);\n", init.Index, init.ID)
	case ir.InitSlotFromLeft:
		e.printf("    size_t* s%d = (size_t*) left[%d];\n", init.Index, init.Slot)
	case ir.InitSlotFromRight:
		e.printf("    size_t* s%d = (size_t*) right[%d];\n", init.Index, init.Slot)
	case ir.InitReuseLeft:
		e.printf("    size_t* a%d = left;\n", init.Index)
	case ir.InitReuseRight:
		e.printf("    size_t* a%d = right;\n", init.Index)
	}
}

func (e *emitter) instruction(inst ir.Instruction) {
	switch inst := inst.(type) {
	case ir.SetSlot:
		e.printf("    %s[%d] = (size_t) %s;\n", inst.Target, inst.Slot, inst.Value)
	case ir.PushEquation:
		e.printf("    push_equation(%s, %s);  // %s\n", inst.Left, inst.Right, inst.Description)
	case ir.FreeLeft:
		e.printf("    free(left);\n")
	case ir.FreeRight:
		e.printf("    free(right);\n")
	}
}

func (e *emitter) ruleMap(entries []ir.RuleMapEntry) {
	e.printf("\nvoid init_rules() {\n")
	for _, entry := range entries {
		e.printf("    RULES[%d][%d] = rule_%d;\n", entry.Left, entry.Right, entry.Rule)
	}
	e.printf("}\n")
}

func (e *emitter) function(function *ir.Function) {
	e.printf("\nsize_t** func_%d() {\n", function.Index)
	for _, init := range function.Initializers {
		e.initializer(init)
	}
	for _, inst := range function.Instructions {
		e.instruction(inst)
	}
	e.printf("    size_t** outputs = malloc(sizeof(size_t*) * %d);\n", len(function.Outputs))
	for i, output := range function.Outputs {
		e.printf("    outputs[%d] = %s;\n", i, output)
	}
	e.printf("    return outputs;\n")
	e.printf("}\n")
}

func (e *emitter) main(program *ir.Program) {
	entry := program.Functions[program.EntryPoint]
	outputCount := len(entry.Outputs)

	e.printf("\nint main(void) {\n")
	e.printf("#ifdef ZZ_TIMING\n")
	e.printf("    clock_t start = clock();\n")
	e.printf("#endif\n")
	e.printf("    size_t** outputs = func_%d();\n", entry.Index)
	e.printf("    run();\n")
	e.printf("    for (size_t i = 0; i < %d; i++) {\n", outputCount)
	e.printf("        print_term(stdout, outputs[i], 1000);\n")
	e.printf("        printf(\"\\n\");\n")
	e.printf("    }\n")
	e.printf("    for (size_t i = 0; i < %d; i++) {\n", outputCount)
	e.printf("        free_term(outputs[i]);\n")
	e.printf("    }\n")
	e.printf("    free(outputs);\n")
	e.printf("%s", cTiming)
	e.printf("    return 0;\n")
	e.printf("}\n")
}

const cDeclarations = `
size_t* EQ_STACK[MAX_STACK_SIZE + 1][2];
size_t EQ_STACK_SIZE = 0;

size_t REDUCTIONS = 0;

typedef void (*RuleFun)(size_t* left, size_t* right);

size_t* new_agent(size_t agent_id);
size_t* new_name();
void push_equation(size_t* left, size_t* right);
void pop_equation(size_t** left, size_t** right);
void print_term(FILE* f, size_t* term, size_t max_recursion);
void free_term(size_t* term);
void init_rules();
void run();
`

const cRuntime = `
RuleFun RULES[AGENT_COUNT][AGENT_COUNT] = { NULL };

#define IS_NAME(term) ((term)[0] >= AGENT_COUNT)
#define IS_AGENT(term) ((term)[0] < AGENT_COUNT)

size_t* new_agent(size_t agent_id) {
    size_t arity = ARITY[agent_id];
    size_t* agent = malloc(sizeof(size_t) * (arity + 1));
    if (!agent) {
        fprintf(stderr, "error: out of memory\n");
        exit(1);
    }
    agent[0] = agent_id;
    return agent;
}

size_t* new_name() {
    size_t* name = malloc(sizeof(size_t) * 2);
    if (!name) {
        fprintf(stderr, "error: out of memory\n");
        exit(1);
    }
    name[0] = NAME_COUNTER++;
    name[1] = 0;
    return name;
}

void push_equation(size_t* left, size_t* right) {
    if (EQ_STACK_SIZE >= MAX_STACK_SIZE) {
        fprintf(stderr, "error: equation stack overflow (limit %d); raise it with --stack-size\n", MAX_STACK_SIZE);
        exit(1);
    }
    EQ_STACK[EQ_STACK_SIZE][0] = left;
    EQ_STACK[EQ_STACK_SIZE][1] = right;
    EQ_STACK_SIZE++;
}

void pop_equation(size_t** left, size_t** right) {
    EQ_STACK_SIZE--;
    *left = EQ_STACK[EQ_STACK_SIZE][0];
    *right = EQ_STACK[EQ_STACK_SIZE][1];
}

void print_term(FILE* f, size_t* term, size_t max_recursion) {
    if (term[0] == 0) {                 // the indirection agent
        print_term(f, (size_t*) term[1], max_recursion);
        return;
    }
    if (IS_NAME(term)) {
        fprintf(f, "x%zu", term[0]);
        return;
    }

    size_t arity = ARITY[term[0]];
    if (arity == 0) {
        fprintf(f, "%s", AGENTS[term[0]]);
        return;
    }

    fprintf(f, "%s(", AGENTS[term[0]]);
    if (max_recursion > 0) {
        for (size_t i = 1; i <= arity; i++) {
            print_term(f, (size_t*) term[i], max_recursion - 1);
            if (i != arity) {
                fprintf(f, ", ");
            }
        }
    } else {
        fprintf(f, "...");
    }
    fprintf(f, ")");
}

void free_term(size_t* term) {
    if (term[0] == 0) {
        free_term((size_t*) term[1]);
        free(term);
        return;
    }
    if (IS_NAME(term)) {
        free(term);
        return;
    }
    size_t arity = ARITY[term[0]];
    for (size_t i = 1; i <= arity; i++) {
        free_term((size_t*) term[i]);
    }
    free(term);
}

void run() {
    size_t *left, *right;

    init_rules();

    while (EQ_STACK_SIZE) {
        pop_equation(&left, &right);
        REDUCTIONS++;

#ifdef ZZ_TRACE
        fprintf(stderr, "equation: ");
        print_term(stderr, left, 3);
        fprintf(stderr, " = ");
        print_term(stderr, right, 3);
        fprintf(stderr, "\n");
#endif

        // Indirection
        if (left[0] == 0) {
            push_equation((size_t*) left[1], right);
            free(left);
            continue;
        }
        if (right[0] == 0) {
            push_equation(left, (size_t*) right[1]);
            free(right);
            continue;
        }

        // Interaction
        if (IS_AGENT(left) && IS_AGENT(right)) {
            size_t a_left = left[0];
            size_t a_right = right[0];
            if (a_left > a_right) {
                size_t* tmp = left;
                left = right;
                right = tmp;
                a_left = left[0];
                a_right = right[0];
            }
            RuleFun rule = RULES[a_left][a_right];
            if (!rule) {
                fprintf(stderr, "error: no rule for ");
                print_term(stderr, left, 3);
                fprintf(stderr, " and ");
                print_term(stderr, right, 3);
                fprintf(stderr, "\n");
                exit(1);
            }
            rule(left, right);
            continue;
        }

        // Variable
        if (IS_NAME(left)) {
            left[0] = 0;
            left[1] = (size_t) right;
            continue;
        }
        right[0] = 0;
        right[1] = (size_t) left;
    }
}
`

const cTiming = `#ifdef ZZ_TIMING
    clock_t end = clock();
    double time = (double) (end - start) / CLOCKS_PER_SEC;
    double reductions_per_second = (double) REDUCTIONS / time;
    fprintf(stderr, "\n[Reductions: %zu, CPU time: %f, R/s: %f]\n", REDUCTIONS, time, reductions_per_second);
#endif
`
