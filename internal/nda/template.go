package nda

const agreementText = `
EMPLOYEE NONDISCLOSURE AGREEMENT

This agreement (the "Agreement") is entered into on {{.EffectiveDate}} by {{.EmployerName}} ("Company") and {{.EmployeeName}}, employed as {{.Designation}} ("Employee").

In consideration of the commencement of Employee's employment with Company and the compensation that will be paid, Employee and Company agree as follows:

1. CONFIDENTIAL INFORMATION

In the performance of Employee's job duties, Employee will be exposed to Company's Confidential Information. "Confidential Information" means information or material that is commercially valuable to Company and not generally known or readily ascertainable in the industry, including but not limited to: {{join .Confidential ", "}}.

2. NONDISCLOSURE

Employee shall hold Company's Confidential Information, whether or not prepared or developed by Employee, in the strictest confidence, and shall not disclose it to anyone outside Company without Company's prior written consent, nor use it for Employee's own purposes or for the benefit of anyone other than Company.

Employee has no obligation to treat as confidential any information which:
(a) was known to Employee, without an obligation of confidence, before it was disclosed by Company;
(b) is or becomes public knowledge through no fault of Employee; or
(c) is or becomes lawfully available to Employee from a source other than Company.

3. CONFIDENTIAL INFORMATION OF OTHERS

Employee will not disclose to Company, use in Company's business, or cause Company to use, any trade secret of others.

4. RETURN OF MATERIALS

When Employee's employment ends, for whatever reason, Employee will promptly deliver to Company all originals and copies of documents, records, software, media and other materials containing Confidential Information, together with all equipment and other property belonging to Company.

5. SURVIVAL

Employee's obligations under this Agreement continue after employment ends for as long as the Confidential Information remains a trade secret.

6. GENERAL PROVISIONS

(a) Relationship: Nothing in this Agreement makes Employee a partner or joint venturer of Company.
(b) Severability: If a court finds any provision invalid or unenforceable, the remainder shall be interpreted to best effect the intent of the parties.
(c) Integration: This Agreement is the complete understanding of the parties and supersedes all prior agreements on its subject.
(d) Waiver: Failure to exercise a right is not a waiver of prior or subsequent rights.
(e) Injunctive Relief: Company may apply to a court for an order enjoining misappropriation of Confidential Information.
(f) Indemnity: Employee shall indemnify Company against losses caused by a breach of this Agreement.
(g) Attorney Fees: The prevailing party may recover reasonable attorney fees and costs.
(h) Governing Law: This Agreement is governed by the laws of the State of {{.StateLaw}}.
(i) Jurisdiction: Employee consents to the exclusive jurisdiction of the courts located in {{.Jurisdiction}}.
(j) Successors and Assigns: This Agreement binds each party's heirs, successors and assigns.

7. NOTICE OF IMMUNITY

Employee is notified that an individual shall not be held criminally or civilly liable under any federal or state trade secret law for a disclosure of a trade secret made in confidence to a government official or an attorney solely for reporting or investigating a suspected violation of law, or made in a filing under seal in a lawsuit or other proceeding.

8. SIGNATURES

Employee: {{.EmployeeName}}
Signature _____________________
Date _____________________

Company: {{.EmployerName}}
Signature _____________________
Date _____________________
`
