package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vdakb/docker-sub018/internal/descriptor"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the attribute mapping of a descriptor",
	Long:  `Parses the descriptor document and prints the declared attributes, templates, references and actions.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := descriptor.Load(args[0])
	if err != nil {
		return err
	}
	printDescriptor(d, "")
	return nil
}

func printDescriptor(d *descriptor.Descriptor, indent string) {
	if d.Identifier != "" {
		fmt.Printf("%sidentifier: %s\n", indent, d.Identifier)
	}
	if d.UniqueName != "" {
		fmt.Printf("%suniqueName: %s\n", indent, d.UniqueName)
	}
	if d.Status != "" {
		fmt.Printf("%sstatus:     %s\n", indent, d.Status)
	}
	if d.Password != "" {
		fmt.Printf("%spassword:   %s\n", indent, d.Password)
	}
	if d.Transformation {
		fmt.Printf("%stransformation: enabled\n", indent)
	}
	for _, a := range d.Attributes() {
		flags := a.Flags.String()
		if flags != "" {
			flags = " [" + flags + "]"
		}
		fmt.Printf("%s  attribute %s <- %s (%s)%s\n", indent, a.ID, a.Source, a.Type, flags)
	}
	for _, t := range d.Templates() {
		fmt.Printf("%s  template  %s = %s (%s)\n", indent, t.ID, t.Source, t.Type)
	}
	for id, rule := range d.Transformer() {
		fmt.Printf("%s  transform %s via %s\n", indent, id, rule)
	}
	for _, phase := range []descriptor.Phase{
		descriptor.CreateBefore, descriptor.CreateAfter,
		descriptor.ModifyBefore, descriptor.ModifyAfter,
		descriptor.DeleteBefore, descriptor.DeleteAfter,
	} {
		if a := d.Action(phase); a != nil {
			fmt.Printf("%s  action    %s on %s (%s), %d option(s)\n", indent, phase, a.Target, a.Language, len(a.Options))
		}
	}
	for _, ref := range d.References() {
		fmt.Printf("%s  multivalue %s <- %s:\n", indent, ref.Name.Target, ref.Name.Source)
		printDescriptor(ref.Mapping, indent+"  ")
	}
}
